package restclient

import (
	"context"

	"github.com/stretchr/testify/mock"
)

var _ Interface = &MockRestClient{}

type MockRestClient struct {
	mock.Mock
}

func (m *MockRestClient) Post(ctx context.Context, endpoint string, body any, headers map[string]string) ([]byte, int, error) {
	args := m.Called(ctx, endpoint, body, headers)
	return args.Get(0).([]byte), args.Int(1), args.Error(2)
}
