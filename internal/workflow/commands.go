package workflow

import (
	"strings"

	"github.com/baharkarakas/ledger-bot/internal/models"
)

type wordSet map[string]struct{}

func words(ws ...string) wordSet {
	s := make(wordSet, len(ws))
	for _, w := range ws {
		s[w] = struct{}{}
	}
	return s
}

func (s wordSet) has(cmd string) bool {
	_, ok := s[cmd]
	return ok
}

var (
	cancelWords  = words("cancel", "batal")
	retryWords   = words("retry", "ulangi", "continue", "lanjut")
	discardWords = words("discard", "hapus", "buang")
	confirmWords = words("yes", "ya", "ok", "confirm", "simpan")
	newWords     = words("new", "transaksi", "start")
	incomeWords  = words("1", "income", "pemasukan", "sale", "jual", "record sale")
	expenseWords = words("2", "expense", "pengeluaran", "beli", "record expense")
)

// normalize lowercases and collapses inner whitespace.
func normalize(text string) string {
	return strings.Join(strings.Fields(strings.ToLower(text)), " ")
}

// shortcutType maps a main-menu shortcut straight to a transaction type.
func shortcutType(cmd string) (models.TransactionType, bool) {
	switch cmd {
	case "record sale", "jual", "income":
		return models.TxnIncome, true
	case "record expense", "expense", "beli":
		return models.TxnExpense, true
	}
	return "", false
}

func parseType(cmd string) (models.TransactionType, bool) {
	switch {
	case incomeWords.has(cmd):
		return models.TxnIncome, true
	case expenseWords.has(cmd):
		return models.TxnExpense, true
	}
	return "", false
}

// parseEdit reads "edit amount", "edit category" or "edit description".
func parseEdit(cmd string) (models.EditField, bool) {
	rest, ok := strings.CutPrefix(cmd, "edit ")
	if !ok {
		return "", false
	}
	f := models.EditField(strings.TrimSpace(rest))
	return f, f.Valid()
}
