package clients

import (
	"GoTelegramAI/app/runtime"
)

type Interface interface {
	Subscribe(*runtime.Runtime) error
	Close() error
}

type Client struct {
	runtime *runtime.Runtime
}
