// Package orderinput разбирает строку заказа вида "Код1:Количество1;Код2:Количество2".
//
// Единственный десятичный разделитель: точка. Допускаются знак перед числом,
// а также формы ".5" и "5.". Запятая, экспоненциальная запись и разделители
// разрядов считаются некорректным количеством.
package orderinput

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/vladislavdragonenkov/smartmeal/internal/domain"
	"github.com/vladislavdragonenkov/smartmeal/internal/result"
)

const (
	clauseSeparator = ";"
	partSeparator   = ":"

	// Format: ожидаемый формат одной позиции, показывается пользователю в сообщениях.
	Format = "Code:Quantity"
	// Prompt: подсказка для ввода заказа.
	Prompt = "Code1:Qty1;Code2:Qty2;..."
	// Example: пример корректного ввода.
	Example = "A1004292:2;A1004293:0.5"
)

var quantityPattern = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)$`)

// Parse превращает строку ввода в упорядоченный список строк заказа.
// Первая же ошибка прерывает разбор, частичный результат не возвращается.
func Parse(input string) result.Result[[]domain.ParsedOrderLine] {
	if strings.TrimSpace(input) == "" {
		return result.Failf[[]domain.ParsedOrderLine](domain.CodeValidation, "input must not be empty")
	}

	clauses := splitClauses(input)
	if len(clauses) == 0 {
		return result.Failf[[]domain.ParsedOrderLine](domain.CodeValidation, "no items found")
	}

	lines := make([]domain.ParsedOrderLine, 0, len(clauses))
	for _, clause := range clauses {
		line, err := parseClause(clause)
		if err != nil {
			return result.Fail[[]domain.ParsedOrderLine](err)
		}
		lines = append(lines, line)
	}

	return result.Ok(lines)
}

func splitClauses(input string) []string {
	raw := strings.Split(input, clauseSeparator)
	clauses := make([]string, 0, len(raw))
	for _, clause := range raw {
		clause = strings.TrimSpace(clause)
		if clause == "" {
			continue
		}
		clauses = append(clauses, clause)
	}
	return clauses
}

func parseClause(clause string) (domain.ParsedOrderLine, *domain.Error) {
	parts := strings.Split(clause, partSeparator)
	if len(parts) != 2 {
		return domain.ParsedOrderLine{}, invalidClause(clause)
	}

	code := strings.TrimSpace(parts[0])
	quantityText := strings.TrimSpace(parts[1])
	if code == "" || quantityText == "" {
		return domain.ParsedOrderLine{}, invalidClause(clause)
	}

	quantity, ok := parseQuantity(quantityText)
	if !ok {
		return domain.ParsedOrderLine{}, domain.Errorf(domain.CodeValidation,
			"invalid quantity %q for code %q", quantityText, code)
	}
	if !quantity.IsPositive() {
		return domain.ParsedOrderLine{}, domain.Errorf(domain.CodeValidation,
			"code %q: quantity must be greater than zero", code)
	}

	return domain.ParsedOrderLine{Article: code, Quantity: quantity}, nil
}

func invalidClause(clause string) *domain.Error {
	return domain.Errorf(domain.CodeValidation, "invalid item %q: expected format %s", clause, Format)
}

func parseQuantity(text string) (decimal.Decimal, bool) {
	if !quantityPattern.MatchString(text) {
		return decimal.Decimal{}, false
	}

	// ".5" и "5." приводим к полной записи.
	sign := ""
	digits := text
	if digits[0] == '+' || digits[0] == '-' {
		sign, digits = digits[:1], digits[1:]
	}
	if strings.HasPrefix(digits, ".") {
		digits = "0" + digits
	}
	digits = strings.TrimSuffix(digits, ".")

	value, err := decimal.NewFromString(sign + digits)
	if err != nil {
		return decimal.Decimal{}, false
	}
	return value, true
}
