package chains

import (
	"context"
	"fmt"
	"strings"

	"github.com/xlab/treeprint"

	"GoTelegramAI/app/models"
)

type ThoughtStep struct {
	Context    string `json:"context" description:"The specific context or condition considered in this step."`
	Reasoning  string `json:"reasoning" description:"An explanation of the reasoning process at this step."`
	Conclusion string `json:"conclusion" description:"The intermediate conclusion reached at this step."`
}

type ChainOfThought struct {
	Steps           []ThoughtStep `json:"steps" description:"A list of reasoning steps leading to the final conclusion."`
	FinalConclusion string        `json:"final_conclusion" description:"The final conclusion after all reasoning steps."`
}

func (c ChainOfThought) String() string {
	tree := treeprint.New()
	tree.SetValue("🧠 Chain of Thought")
	for i, s := range c.Steps {
		step := tree.AddBranch(fmt.Sprintf("🔍 Step %d", i+1))
		step.AddNode("Context: " + s.Context)
		step.AddNode("Reasoning: " + s.Reasoning)
		step.AddNode("Conclusion: " + s.Conclusion)
	}
	tree.AddBranch("🎯 Final Conclusion").AddNode(c.FinalConclusion)
	return tree.String()
}

// Markdown is the page body published for the chain of thought.
func (c ChainOfThought) Markdown() string {
	var sb strings.Builder
	for i, s := range c.Steps {
		fmt.Fprintf(&sb, "### 🔍 Step %d\n\n", i+1)
		fmt.Fprintf(&sb, "- **Context:** %s\n", s.Context)
		fmt.Fprintf(&sb, "- **Reasoning:** %s\n", s.Reasoning)
		fmt.Fprintf(&sb, "- **Conclusion:** %s\n\n", s.Conclusion)
	}
	fmt.Fprintf(&sb, "### 🎯 Final Conclusion\n\n%s\n", c.FinalConclusion)
	return sb.String()
}

type Summary struct {
	ChainOfThought ChainOfThought `json:"chain_of_thought" description:"The chain of thought leading to the summary, key points, and takeaways."`
	Summary        string         `json:"summary" description:"A concise summary of the text."`
	KeyPoints      []string       `json:"key_points" description:"Key points extracted from the text."`
	Takeaways      []string       `json:"takeaways" description:"Important takeaways from the text."`
	Hashtags       []string       `json:"hashtags" description:"Relevant hashtags related to the text."`
}

// Format renders the reply. pageURL links the published chain of thought and
// is left out when empty.
func (s Summary) Format(pageURL string) string {
	keyPoints := make([]string, len(s.KeyPoints))
	for i, p := range s.KeyPoints {
		keyPoints[i] = "  • " + p
	}
	takeaways := make([]string, len(s.Takeaways))
	for i, t := range s.Takeaways {
		takeaways[i] = "  💡 " + t
	}

	parts := []string{
		"📝 Summary", s.Summary,
		"🎯 Key Points", strings.Join(keyPoints, "\n"),
		"💫 Takeaways", strings.Join(takeaways, "\n"),
		"🏷️ Tags: " + strings.Join(s.Hashtags, " "),
	}
	if pageURL != "" {
		parts = append(parts, "🔗 Chain of Thought: "+pageURL)
	}
	return strings.Join(parts, "\n\n")
}

func Summarize(ctx context.Context, llm models.Interface, text string) (*Summary, error) {
	var out Summary
	err := llm.Generate(ctx, []models.Message{models.User(fmt.Sprintf(summaryPrompt, text))}, "summary", &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}
