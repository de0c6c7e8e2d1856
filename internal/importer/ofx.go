// Package importer turns bank and credit card statements into expenses.
package importer

import (
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"

	"github.com/aclindsa/ofxgo"
	"github.com/shopspring/decimal"

	"spendwise/internal/categories"
	"spendwise/internal/core"
)

// Statement is the result of parsing one statement file.
type Statement struct {
	Expenses []core.CreateExpenseData
	// Skipped counts credits, deposits and zero-amount rows.
	Skipped int
}

var severityRe = regexp.MustCompile(`(?i)<SEVERITY>(Info|Warn|Error)`)

// normalize fixes the formatting slips banks commonly make in SGML files.
func normalize(content string) string {
	content = strings.TrimLeft(content, " \t\r\n")
	return severityRe.ReplaceAllStringFunc(content, strings.ToUpper)
}

// ParseOFX reads an OFX or QFX statement. Debits become expenses dated on
// their posting day in loc; everything else is skipped.
func ParseOFX(r io.Reader, loc *time.Location) (Statement, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return Statement{}, fmt.Errorf("read statement: %w", err)
	}
	resp, err := ofxgo.ParseResponse(strings.NewReader(normalize(string(content))))
	if err != nil {
		return Statement{}, fmt.Errorf("parse OFX: %w", err)
	}
	if loc == nil {
		loc = time.Local
	}

	var st Statement
	add := func(list *ofxgo.TransactionList) {
		if list == nil {
			return
		}
		for _, tx := range list.Transactions {
			data, ok := expenseFrom(tx, loc)
			if !ok {
				st.Skipped++
				continue
			}
			st.Expenses = append(st.Expenses, data)
		}
	}
	for _, msg := range resp.Bank {
		if stmt, ok := msg.(*ofxgo.StatementResponse); ok {
			add(stmt.BankTranList)
		}
	}
	for _, msg := range resp.CreditCard {
		if stmt, ok := msg.(*ofxgo.CCStatementResponse); ok {
			add(stmt.BankTranList)
		}
	}
	return st, nil
}

func expenseFrom(tx ofxgo.Transaction, loc *time.Location) (core.CreateExpenseData, bool) {
	f, _ := tx.TrnAmt.Float64()
	amount := decimal.NewFromFloat(f).Neg().Round(2)
	if !amount.IsPositive() {
		return core.CreateExpenseData{}, false
	}

	data := core.CreateExpenseData{
		Amount:      amount.InexactFloat64(),
		Category:    categoryFor(tx.TrnType.String()),
		ExpenseDate: core.DateOf(tx.DtPosted.Time.In(loc)),
	}
	if note := payee(tx); note != "" {
		data.Note = &note
	}
	return data, true
}

// categoryFor maps OFX transaction types onto the registry. Most card and
// bank debits carry no useful type and land in Other.
func categoryFor(trnType string) string {
	switch strings.ToUpper(trnType) {
	case "FEE", "SRVCHG", "DIRECTDEBIT", "REPEATPMT":
		return categories.Bills
	default:
		return categories.Other
	}
}

func payee(tx ofxgo.Transaction) string {
	if tx.Payee != nil && tx.Payee.Name != "" {
		return strings.TrimSpace(string(tx.Payee.Name))
	}
	if name := strings.TrimSpace(string(tx.Name)); name != "" {
		return name
	}
	return strings.TrimSpace(string(tx.Memo))
}
