package chains

import (
	"context"
	"fmt"
	"strings"

	"GoTelegramAI/app/models"
)

type Difficulty string

const (
	N1   Difficulty = "N1"
	N2   Difficulty = "N2"
	N3   Difficulty = "N3"
	N4N5 Difficulty = "N4-N5"
)

func (d Difficulty) Emoji() string {
	switch d {
	case N1:
		return "🔴"
	case N2:
		return "🟡"
	case N3:
		return "🟢"
	case N4N5:
		return "⚪"
	}
	return ""
}

type ExampleSentence struct {
	Japanese string `json:"japanese" description:"日文範例句子"`
	Chinese  string `json:"chinese" description:"對應的繁體中文翻譯"`
}

func (e ExampleSentence) String() string {
	return fmt.Sprintf("    ⋮ 日：%s\n    ⋮ 中：%s", e.Japanese, e.Chinese)
}

type VocabularyItem struct {
	Word             string            `json:"word" description:"單字/語彙"`
	Reading          string            `json:"reading" description:"假名讀音"`
	Difficulty       Difficulty        `json:"difficulty" enum:"N1,N2,N3,N4-N5" description:"JLPT難度等級"`
	Original         string            `json:"original" description:"原文中出現的形式"`
	Explanation      string            `json:"explanation" description:"詳細解釋與用法說明"`
	ExampleSentences []ExampleSentence `json:"example_sentences" description:"相關例句列表"`
}

func (v VocabularyItem) String() string {
	return fmt.Sprintf("【詞彙】 %s（%s） %s %s\n┣━━ 原文：%s\n┣━━ 解釋：%s\n┗━━ 例句\n%s",
		v.Word, v.Reading, v.Difficulty.Emoji(), v.Difficulty,
		v.Original, v.Explanation, joinExamples(v.ExampleSentences))
}

type GrammarItem struct {
	GrammarPattern   string            `json:"grammar_pattern" description:"文法句型"`
	Difficulty       Difficulty        `json:"difficulty" enum:"N1,N2,N3,N4-N5" description:"JLPT難度等級"`
	Original         string            `json:"original" description:"原文中出現的形式"`
	Explanation      string            `json:"explanation" description:"文法的基本意思和功能說明"`
	Conjugation      string            `json:"conjugation" description:"接續變化規則"`
	Usage            string            `json:"usage" description:"使用場合與注意事項"`
	Comparison       string            `json:"comparison" description:"與相似文法的比較"`
	ExampleSentences []ExampleSentence `json:"example_sentences" description:"示例句子列表"`
}

func (g GrammarItem) String() string {
	return fmt.Sprintf("【文法】 %s %s %s\n┣━━ 原文：%s\n┣━━ 解釋：%s\n┣━━ 接續：%s\n┣━━ 場合：%s\n┣━━ 比較：%s\n┗━━ 例句\n%s",
		g.GrammarPattern, g.Difficulty.Emoji(), g.Difficulty,
		g.Original, g.Explanation, g.Conjugation, g.Usage, g.Comparison,
		joinExamples(g.ExampleSentences))
}

type JLPTResponse struct {
	Vocabulary []VocabularyItem `json:"vocabulary_section" description:"詞彙分析區段"`
	Grammar    []GrammarItem    `json:"grammar_section" description:"文法分析區段"`
}

func (r JLPTResponse) String() string {
	vocab := make([]string, len(r.Vocabulary))
	for i, v := range r.Vocabulary {
		vocab[i] = v.String()
	}
	grammar := make([]string, len(r.Grammar))
	for i, g := range r.Grammar {
		grammar[i] = g.String()
	}
	return "⭒⭒⭒⭒⭒⭒⭒⭒⭒⭒ 📚 詞彙分析 ⭒⭒⭒⭒⭒⭒⭒⭒⭒⭒\n\n" +
		strings.Join(vocab, "\n\n") + "\n\n" +
		"⭒⭒⭒⭒⭒⭒⭒⭒⭒⭒ 📓 文法分析 ⭒⭒⭒⭒⭒⭒⭒⭒⭒⭒\n\n" +
		strings.Join(grammar, "\n\n")
}

func joinExamples(examples []ExampleSentence) string {
	lines := make([]string, len(examples))
	for i, e := range examples {
		lines[i] = e.String()
	}
	return strings.Join(lines, "\n")
}

func AnalyzeJLPT(ctx context.Context, llm models.Interface, text string) (*JLPTResponse, error) {
	var out JLPTResponse
	err := llm.Generate(ctx, []models.Message{
		models.System(jlptPrompt),
		models.User(text),
	}, "jlpt", &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}
