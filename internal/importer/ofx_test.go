package importer

import (
	"strings"
	"testing"
	"time"

	"spendwise/internal/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const header = `OFXHEADER:100
DATA:OFXSGML
VERSION:102
SECURITY:NONE
ENCODING:USASCII
CHARSET:1252
COMPRESSION:NONE
OLDFILEUID:NONE
NEWFILEUID:NONE

<OFX>
<SIGNONMSGSRSV1>
<SONRS>
<STATUS>
<CODE>0
<SEVERITY>Info
</STATUS>
<DTSERVER>20240315120000[0:GMT]
<LANGUAGE>ENG
</SONRS>
</SIGNONMSGSRSV1>
`

const bankStatement = `
` + header + `<BANKMSGSRSV1>
<STMTTRNRS>
<TRNUID>1
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<STMTRS>
<CURDEF>USD
<BANKACCTFROM>
<BANKID>123456789
<ACCTID>1234567890
<ACCTTYPE>CHECKING
</BANKACCTFROM>
<BANKTRANLIST>
<DTSTART>20240101120000[0:GMT]
<DTEND>20240131120000[0:GMT]
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20240115120000[0:GMT]
<TRNAMT>-25.50
<FITID>2024011501
<NAME>STARBUCKS STORE #1234
</STMTTRN>
<STMTTRN>
<TRNTYPE>CREDIT
<DTPOSTED>20240116120000[0:GMT]
<TRNAMT>1200.00
<FITID>2024011601
<NAME>PAYROLL
</STMTTRN>
<STMTTRN>
<TRNTYPE>FEE
<DTPOSTED>20240131120000[0:GMT]
<TRNAMT>-4.99
<FITID>2024013101
<NAME>MONTHLY SERVICE FEE
</STMTTRN>
</BANKTRANLIST>
<LEDGERBAL>
<BALAMT>1000.00
<DTASOF>20240131120000[0:GMT]
</LEDGERBAL>
</STMTRS>
</STMTTRNRS>
</BANKMSGSRSV1>
</OFX>`

const cardStatement = header + `<CREDITCARDMSGSRSV1>
<CCSTMTTRNRS>
<TRNUID>1
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<CCSTMTRS>
<CURDEF>USD
<CCACCTFROM>
<ACCTID>4111111111111111
</CCACCTFROM>
<BANKTRANLIST>
<DTSTART>20240101120000[0:GMT]
<DTEND>20240131120000[0:GMT]
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20240110120000[0:GMT]
<TRNAMT>-45.99
<FITID>CC2024011001
<NAME>AMAZON.COM
</STMTTRN>
</BANKTRANLIST>
<LEDGERBAL>
<BALAMT>-500.00
<DTASOF>20240131120000[0:GMT]
</LEDGERBAL>
</CCSTMTRS>
</CCSTMTTRNRS>
</CREDITCARDMSGSRSV1>
</OFX>`

func TestParseOFXBankStatement(t *testing.T) {
	st, err := ParseOFX(strings.NewReader(bankStatement), time.UTC)
	require.NoError(t, err)

	require.Len(t, st.Expenses, 2)
	assert.Equal(t, 1, st.Skipped, "the payroll credit is not an expense")

	coffee := st.Expenses[0]
	assert.Equal(t, 25.5, coffee.Amount)
	assert.Equal(t, "other", coffee.Category)
	assert.Equal(t, core.NewDate(2024, time.January, 15), coffee.ExpenseDate)
	require.NotNil(t, coffee.Note)
	assert.Equal(t, "STARBUCKS STORE #1234", *coffee.Note)

	fee := st.Expenses[1]
	assert.Equal(t, 4.99, fee.Amount)
	assert.Equal(t, "bills", fee.Category)

	for _, e := range st.Expenses {
		assert.NoError(t, e.Validate())
	}
}

func TestParseOFXCreditCard(t *testing.T) {
	st, err := ParseOFX(strings.NewReader(cardStatement), time.UTC)
	require.NoError(t, err)
	require.Len(t, st.Expenses, 1)
	assert.Equal(t, 45.99, st.Expenses[0].Amount)
}

func TestParseOFXUsesLocationForDate(t *testing.T) {
	tokyo := time.FixedZone("JST", 9*60*60)
	st, err := ParseOFX(strings.NewReader(cardStatement), tokyo)
	require.NoError(t, err)
	// 12:00 GMT is 21:00 the same day in Tokyo
	assert.Equal(t, core.NewDate(2024, time.January, 10), st.Expenses[0].ExpenseDate)
}

func TestParseOFXRejectsGarbage(t *testing.T) {
	_, err := ParseOFX(strings.NewReader("not a statement"), time.UTC)
	assert.ErrorContains(t, err, "parse OFX")
}

func TestCategoryFor(t *testing.T) {
	assert.Equal(t, "bills", categoryFor("srvchg"))
	assert.Equal(t, "other", categoryFor("POS"))
}
