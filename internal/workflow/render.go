package workflow

import (
	"fmt"
	"strings"

	"github.com/baharkarakas/ledger-bot/internal/models"
	"github.com/baharkarakas/ledger-bot/internal/money"
	"github.com/baharkarakas/ledger-bot/internal/recovery"
	"github.com/baharkarakas/ledger-bot/internal/scoring"
)

// Reply is the text sent back to the user plus the choices a transport may render.
type Reply struct {
	Text    string   `json:"reply"`
	Options []string `json:"options,omitempty"`
}

var (
	mainOptions    = []string{"new", "record sale", "record expense"}
	typeOptions    = []string{"1. Income", "2. Expense"}
	confirmOptions = []string{"yes", "edit amount", "edit category", "edit description", "cancel"}
	recoverOptions = []string{"continue", "discard"}
	failedOptions  = []string{"retry", "discard"}
)

const amountExamples = "Examples: 50000, 50,000, 1.500.000, 75000 lunch with client"

func mainMenu() Reply {
	return Reply{Text: "What would you like to do? Send \"new\" to record a transaction.", Options: mainOptions}
}

func typePrompt() Reply {
	return Reply{Text: "Is this income or an expense?", Options: typeOptions}
}

func categoryPrompt(prefix string, list []models.Category) Reply {
	var b strings.Builder
	if prefix != "" {
		b.WriteString(prefix)
		b.WriteString("\n")
	}
	b.WriteString("Choose a category:")
	opts := make([]string, 0, len(list))
	for i, c := range list {
		fmt.Fprintf(&b, "\n%d. %s", i+1, c.Name)
		opts = append(opts, c.Name)
	}
	return Reply{Text: b.String(), Options: opts}
}

func amountPrompt(prefix string) Reply {
	text := "Enter the amount, optionally followed by a description.\n" + amountExamples
	if prefix != "" {
		text = prefix + "\n" + text
	}
	return Reply{Text: text}
}

func describeFields(f models.Fields) string {
	var b strings.Builder
	if f.Type != nil {
		fmt.Fprintf(&b, "Type: %s\n", *f.Type)
	}
	if f.Category != nil {
		fmt.Fprintf(&b, "Category: %s\n", *f.Category)
	}
	if f.Amount != nil {
		amt := *f.Amount
		if d, err := money.ValidateAmount(amt); err == nil {
			amt = money.FormatAmount(d)
		}
		fmt.Fprintf(&b, "Amount: %s\n", amt)
	}
	desc := "-"
	if f.Description != nil {
		desc = *f.Description
	}
	fmt.Fprintf(&b, "Description: %s", desc)
	return b.String()
}

func summary(prefix string, s *models.Session) Reply {
	text := describeFields(s.Fields()) + "\n\nSave this transaction? Reply yes, edit amount, edit category, edit description or cancel."
	if prefix != "" {
		text = prefix + "\n" + text
	}
	return Reply{Text: text, Options: confirmOptions}
}

func editPrompt(f models.EditField) Reply {
	switch f {
	case models.EditAmount:
		return Reply{Text: "Enter the new amount.\n" + amountExamples}
	case models.EditDescription:
		return Reply{Text: "Enter the new description, or - to remove it."}
	}
	return Reply{Text: "Enter the new category."}
}

func savedReply(a scoring.Analysis) Reply {
	if !a.RequiresManualApproval {
		return Reply{Text: "Transaction saved and approved.", Options: mainOptions}
	}
	text := fmt.Sprintf("Transaction saved and waiting for approval (risk score %d", a.ConfidenceScore)
	if names := a.FlagNames(); len(names) > 0 {
		text += ": " + strings.Join(names, ", ")
	}
	return Reply{Text: text + ").", Options: mainOptions}
}

func failedReply() Reply {
	return Reply{
		Text:    "The transaction could not be saved right now. Your entry is kept; reply retry to try again or discard to drop it.",
		Options: failedOptions,
	}
}

func restartReply() Reply {
	return Reply{Text: "This entry was incomplete and has been reset. Send \"new\" to start again.", Options: mainOptions}
}

func offerReply(p *models.PartialTransaction) Reply {
	return Reply{
		Text:    "You have an unsaved transaction:\n" + describeFields(p.Fields()) + "\n\nReply continue to resume it or discard to drop it.",
		Options: recoverOptions,
	}
}

func abandonedReply(res recovery.RetryResult) Reply {
	return Reply{
		Text: fmt.Sprintf("Saving failed after %d retries and the entry was discarded. Please record it again manually:\n%s",
			recovery.MaxRetries, describeFields(res.Data.Fields())),
		Options: mainOptions,
	}
}
