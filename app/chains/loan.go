package chains

import (
	"context"

	"GoTelegramAI/app/models"
	"GoTelegramAI/app/mortgage"
)

// ExtractLoan reads loan parameters out of free text. The result is validated
// by mortgage.Loan.Calculate, not here.
func ExtractLoan(ctx context.Context, llm models.Interface, text string) (*mortgage.Loan, error) {
	var out mortgage.Loan
	err := llm.Generate(ctx, []models.Message{
		models.System(loanPrompt),
		models.User(text),
	}, "loan", &out)
	if err != nil {
		return nil, err
	}
	if out.Currency == "" {
		out.Currency = "$"
	}
	return &out, nil
}
