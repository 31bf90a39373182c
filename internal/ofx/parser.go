// Package ofx reads OFX/QFX bank and credit card statements into
// transactions that can be categorized in bulk.
package ofx

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"slices"
	"strings"

	"github.com/Veraticus/finshare-ai/internal/model"
	"github.com/aclindsa/ofxgo"
)

var (
	severityPattern = regexp.MustCompile(`(?i)<SEVERITY>(Info|Warn|Error)</SEVERITY>`)
	// An SGML opening tag alone on its line with no closing bracket.
	unclosedTagPattern = regexp.MustCompile(`(?m)^(\s*<[A-Z][A-Z0-9._]*[A-Z0-9])$`)
	leadingDatePattern = regexp.MustCompile(`^\d{2}/\d{2}\s+`)
)

var descriptorPrefixes = []string{
	"POS PURCHASE ",
	"PURCHASE AUTHORIZED ON ",
	"DEBIT CARD PURCHASE ",
	"ACH DEBIT ",
	"ACH CREDIT ",
	"CHECK CARD ",
	"VISA PURCHASE ",
	"MC PURCHASE ",
	"DEBIT PURCHASE ",
}

var genericDescriptions = []string{
	"DEBIT",
	"CREDIT",
	"PURCHASE",
	"PAYMENT",
	"POS TRANSACTION",
	"CARD PURCHASE",
}

// Statement is the parsed content of one OFX file.
type Statement struct {
	Accounts     []string
	Transactions []model.Transaction
}

// Parser reads OFX/QFX files.
type Parser struct {
	logger *slog.Logger
}

// NewParser creates a parser. A nil logger uses slog.Default.
func NewParser(logger *slog.Logger) *Parser {
	if logger == nil {
		logger = slog.Default()
	}
	return &Parser{logger: logger}
}

// Parse reads every bank and credit card statement in r. Money leaving the
// account becomes a DEBIT, money arriving a CREDIT; amounts are absolute.
func (p *Parser) Parse(ctx context.Context, r io.Reader) (*Statement, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read OFX file: %w", err)
	}

	resp, err := ofxgo.ParseResponse(strings.NewReader(preprocess(string(content))))
	if err != nil {
		return nil, fmt.Errorf("failed to parse OFX file: %w", err)
	}

	stmt := &Statement{}
	for _, msg := range resp.Bank {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		bank, ok := msg.(*ofxgo.StatementResponse)
		if !ok {
			continue
		}
		account := string(bank.BankAcctFrom.AcctID)
		stmt.addAccount(account)
		if bank.BankTranList != nil {
			stmt.Transactions = append(stmt.Transactions, convertAll(bank.BankTranList.Transactions, account)...)
		}
	}

	for _, msg := range resp.CreditCard {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		card, ok := msg.(*ofxgo.CCStatementResponse)
		if !ok {
			continue
		}
		account := string(card.CCAcctFrom.AcctID)
		stmt.addAccount(account)
		if card.BankTranList != nil {
			stmt.Transactions = append(stmt.Transactions, convertAll(card.BankTranList.Transactions, account)...)
		}
	}

	p.logger.Info("parsed OFX file",
		"transactions", len(stmt.Transactions),
		"accounts", len(stmt.Accounts))
	return stmt, nil
}

func (s *Statement) addAccount(account string) {
	if account != "" && !slices.Contains(s.Accounts, account) {
		s.Accounts = append(s.Accounts, account)
	}
}

// preprocess repairs formatting quirks some banks emit.
func preprocess(content string) string {
	content = strings.TrimLeft(content, " \t\r\n")
	content = severityPattern.ReplaceAllStringFunc(content, strings.ToUpper)
	return unclosedTagPattern.ReplaceAllString(content, "$1>")
}

func convertAll(txns []ofxgo.Transaction, account string) []model.Transaction {
	out := make([]model.Transaction, 0, len(txns))
	for _, t := range txns {
		out = append(out, convert(t, account))
	}
	return out
}

func convert(t ofxgo.Transaction, account string) model.Transaction {
	amount, _ := t.TrnAmt.Float64()
	txType := model.TransactionCredit
	if amount < 0 {
		txType = model.TransactionDebit
		amount = -amount
	}

	tx := model.Transaction{
		ID:           string(t.FiTID),
		Date:         t.DtPosted.Time,
		Name:         string(t.Name),
		MerchantName: merchantName(t),
		Amount:       amount,
		AccountID:    account,
		Type:         txType,
	}
	tx.Hash = tx.GenerateHash()
	return tx
}

// merchantName picks the cleanest merchant description available.
func merchantName(t ofxgo.Transaction) string {
	if t.Payee != nil && t.Payee.Name != "" {
		return strings.TrimSpace(string(t.Payee.Name))
	}

	name := string(t.Name)
	if t.Memo != "" && slices.Contains(genericDescriptions, strings.ToUpper(strings.TrimSpace(name))) {
		name = string(t.Memo)
	}
	name = strings.TrimSpace(name)

	upper := strings.ToUpper(name)
	for _, prefix := range descriptorPrefixes {
		if strings.HasPrefix(upper, prefix) {
			name = name[len(prefix):]
			break
		}
	}
	return strings.TrimSpace(leadingDatePattern.ReplaceAllString(name, ""))
}
