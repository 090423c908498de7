// Package locale converts Brazilian formatted text (1.234,56 and DD/MM/YYYY) into canonical values.
package locale

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const isoLayout = "2006-01-02"

var (
	isoDatePattern   = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	longDatePattern  = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})/(\d{4})$`)
	shortDatePattern = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})/(\d{2})$`)
	groupedPattern   = regexp.MustCompile(`^-?\d{1,3}(\.\d{3})+$`)
)

// shortYearPivot splits two digit years between the 1900s and the 2000s.
const shortYearPivot = 50

// ParseDate converts user or spreadsheet input into an ISO date.
// Unrecognised input is returned trimmed but otherwise untouched.
func ParseDate(raw string) string {
	value := strings.TrimSpace(raw)
	if isoDatePattern.MatchString(value) {
		return value
	}
	if m := longDatePattern.FindStringSubmatch(value); m != nil {
		return isoDate(m[3], m[2], m[1])
	}
	if m := shortDatePattern.FindStringSubmatch(value); m != nil {
		yy, _ := strconv.Atoi(m[3])
		century := "20"
		if yy > shortYearPivot {
			century = "19"
		}
		return isoDate(century+m[3], m[2], m[1])
	}
	return value
}

func isoDate(year, month, day string) string {
	m, _ := strconv.Atoi(month)
	d, _ := strconv.Atoi(day)
	return fmt.Sprintf("%s-%02d-%02d", year, m, d)
}

// ValidDate reports whether value is a real ISO calendar date.
func ValidDate(value string) bool {
	if !isoDatePattern.MatchString(value) {
		return false
	}
	_, err := time.Parse(isoLayout, value)
	return err == nil
}

var currencyNoise = strings.NewReplacer("R$", "", "$", "", " ", "", "\u00a0", "", "\t", "")

// ParseCurrency reads a pt-BR amount such as "R$ 1.234,56". Anything unparseable is zero.
func ParseCurrency(raw string) decimal.Decimal {
	value := currencyNoise.Replace(strings.TrimSpace(raw))
	if value == "" {
		return decimal.Zero
	}
	value = strings.ReplaceAll(value, ".", "")
	value = strings.Replace(value, ",", ".", 1)
	amount, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero
	}
	return amount
}

// ParseAmount reads a form amount. Input containing a comma, or dots grouping thousands as in
// "1.000", is treated as pt-BR; anything else as the "1234.56" sent by number inputs. The
// boolean is false for blank or malformed input.
func ParseAmount(raw string) (decimal.Decimal, bool) {
	value := currencyNoise.Replace(strings.TrimSpace(raw))
	if value == "" {
		return decimal.Zero, false
	}
	if strings.Contains(value, ",") || groupedPattern.MatchString(value) {
		value = strings.ReplaceAll(value, ".", "")
		value = strings.Replace(value, ",", ".", 1)
	}
	amount, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, false
	}
	return amount, true
}
