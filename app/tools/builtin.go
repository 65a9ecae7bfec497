package tools

import (
	"context"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"

	"GoTelegramAI/app/chains"
	"GoTelegramAI/app/memory"
	"GoTelegramAI/app/models"
	"GoTelegramAI/app/telegraph"
	"GoTelegramAI/app/utils"
)

const (
	help      = "help"
	echo      = "echo"
	summarize = SummarizeCommand
	translate = "tr"
	polish    = "polish"
	jlpt      = "jlpt"
	loan      = "loan"
	search    = "search"
	ask       = "ask"

	noMatches = "🤷 No matching messages found."
)

type Memory interface {
	Search(ctx context.Context, query string, chatID int64) (string, error)
	SearchPoints(ctx context.Context, query string, chatID int64) ([]memory.ScoredPoint, error)
}

type Loader interface {
	Load(ctx context.Context, rawURL string) (string, error)
	LoadFile(ctx context.Context, rawURL, name string) (string, error)
}

// Dependencies of the builtin tools. Publisher may be nil, in which case
// summaries are sent without a chain of thought page.
type Dependencies struct {
	LLM       models.Interface
	Memory    Memory
	Loader    Loader
	Publisher telegraph.Publisher
}

var translations = []struct {
	name, lang, description string
}{
	{"tc", "Traditional Chinese (Taiwan)", "Translate into Traditional Chinese"},
	{"en", "English", "Translate into English"},
	{"ja", "Japanese", "Translate into Japanese"},
}

// NewToolkit builds a registry holding every builtin command.
func NewToolkit(deps Dependencies) *Registry {
	r := NewRegistry()
	toolkit := []Tool{
		{
			Name:        help,
			Description: "Show the available commands",
			HandlerFunc: helpHandler(r),
		},
		{
			Name:        echo,
			Description: "Repeat the given text",
			HandlerFunc: echoHandler,
		},
		{
			Name:        summarize,
			Description: "Summarize the text, the page or PDF it links to, or an uploaded document",
			HandlerFunc: deps.summarize,
		},
		{
			Name:        translate,
			Description: "Translate text: /tr <language> <text>",
			HandlerFunc: deps.translateTo,
		},
		{
			Name:        polish,
			Description: "Rewrite the text to be clearer",
			HandlerFunc: deps.polish,
		},
		{
			Name:        jlpt,
			Description: "Explain the hardest Japanese vocabulary and grammar in the text",
			HandlerFunc: deps.jlpt,
		},
		{
			Name:        loan,
			Description: "Calculate loan payments from a description",
			HandlerFunc: deps.loan,
		},
		{
			Name:        search,
			Description: "Search earlier messages of this chat",
			HandlerFunc: deps.search,
		},
		{
			Name:        ask,
			Description: "Answer a question from earlier messages of this chat",
			HandlerFunc: deps.ask,
		},
	}
	for _, tr := range translations {
		toolkit = append(toolkit, Tool{
			Name:        tr.name,
			Description: tr.description,
			HandlerFunc: deps.translateCommand(tr.lang),
		})
	}

	for _, t := range toolkit {
		if err := r.Register(t); err != nil {
			log.Warnf("⚠️ Failed to register builtin tool %s: %v", t.Name, err)
		}
	}
	log.Infof("✅ Registered %d builtin tools", len(toolkit))
	return r
}

func helpHandler(r *Registry) func(context.Context, Request) (string, error) {
	return func(_ context.Context, req Request) (string, error) {
		prefix := commandPrefix(req.Source)
		var sb strings.Builder
		for _, t := range r.All() {
			fmt.Fprintf(&sb, "%s%s - %s\n", prefix, t.Name, t.Description)
		}
		return strings.TrimRight(sb.String(), "\n"), nil
	}
}

func commandPrefix(source string) string {
	if source == SourceDiscord {
		return "!"
	}
	return "/"
}

func echoHandler(_ context.Context, req Request) (string, error) {
	text := req.MessageText()
	if text == "" {
		return "", ErrNoInput
	}
	return text, nil
}

// withDocument appends the text of the first URL found in text.
func (d Dependencies) withDocument(ctx context.Context, text string) (string, error) {
	url := utils.FindURL(text)
	if url == "" || d.Loader == nil {
		return text, nil
	}
	doc, err := d.Loader.Load(ctx, url)
	if err != nil {
		return "", err
	}
	return text + "\n" + doc, nil
}

// withAttachment appends the text of the file attached to req.
func (d Dependencies) withAttachment(ctx context.Context, req Request, text string) (string, error) {
	if d.Loader == nil {
		return text, nil
	}
	doc, err := d.Loader.LoadFile(ctx, req.DocumentURL, req.DocumentName)
	if err != nil {
		return "", err
	}
	return utils.JoinNonEmpty("\n", text, doc), nil
}

func (d Dependencies) summarize(ctx context.Context, req Request) (string, error) {
	text := req.MessageText()
	var err error
	if req.DocumentURL != "" {
		text, err = d.withAttachment(ctx, req, text)
	} else {
		text, err = d.withDocument(ctx, text)
	}
	if err != nil {
		return "", err
	}
	if text == "" {
		return "", ErrNoInput
	}

	s, err := chains.Summarize(ctx, d.LLM, text)
	if err != nil {
		return "", err
	}

	var pageURL string
	if d.Publisher != nil {
		pageURL, err = telegraph.CreateMarkdownPage(ctx, d.Publisher, "Chain of Thought", s.ChainOfThought.Markdown())
		if err != nil {
			log.Warnf("⚠️ Chain of thought page not created: %v", err)
			pageURL = ""
		}
	}
	return s.Format(pageURL), nil
}

func (d Dependencies) translateCommand(lang string) func(context.Context, Request) (string, error) {
	return func(ctx context.Context, req Request) (string, error) {
		text := req.MessageText()
		if text == "" {
			return "", ErrNoInput
		}
		return chains.Translate(ctx, d.LLM, text, lang)
	}
}

// translateTo reads the target language from the first argument.
func (d Dependencies) translateTo(ctx context.Context, req Request) (string, error) {
	lang, rest, _ := strings.Cut(strings.TrimSpace(req.Args), " ")
	if lang == "" {
		return "", fmt.Errorf("%w: usage %s%s <language> <text>", ErrNoInput, commandPrefix(req.Source), translate)
	}
	req.Args = rest
	return d.translateCommand(lang)(ctx, req)
}

func (d Dependencies) polish(ctx context.Context, req Request) (string, error) {
	text := req.MessageText()
	if text == "" {
		return "", ErrNoInput
	}
	return chains.Polish(ctx, d.LLM, text)
}

func (d Dependencies) jlpt(ctx context.Context, req Request) (string, error) {
	text := req.MessageText()
	if text == "" {
		return "", ErrNoInput
	}
	text, err := d.withDocument(ctx, text)
	if err != nil {
		return "", err
	}
	res, err := chains.AnalyzeJLPT(ctx, d.LLM, text)
	if err != nil {
		return "", err
	}
	return res.String(), nil
}

func (d Dependencies) loan(ctx context.Context, req Request) (string, error) {
	text := req.MessageText()
	if text == "" {
		return "", ErrNoInput
	}
	params, err := chains.ExtractLoan(ctx, d.LLM, text)
	if err != nil {
		return "", err
	}
	summary, err := params.Calculate()
	if err != nil {
		return "", err
	}
	return summary.String(), nil
}

func (d Dependencies) search(ctx context.Context, req Request) (string, error) {
	query := req.MessageText()
	if query == "" {
		return "", ErrNoInput
	}
	found, err := d.Memory.Search(ctx, query, req.ChatID)
	if err != nil {
		return "", err
	}
	if found == "" {
		return noMatches, nil
	}
	return found, nil
}

func (d Dependencies) ask(ctx context.Context, req Request) (string, error) {
	question := req.MessageText()
	if question == "" {
		return "", ErrNoInput
	}
	points, err := d.Memory.SearchPoints(ctx, question, req.ChatID)
	if err != nil {
		return "", err
	}
	found := memory.Render(points)
	if found == "" {
		return noMatches, nil
	}
	return chains.Answer(ctx, d.LLM, question, found)
}
