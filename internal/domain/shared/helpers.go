package shared

import (
	"strings"

	"github.com/shopspring/decimal"
)

// MoneyScale é o número de casas decimais das colunas numeric(15,2).
const MoneyScale = 2

// NormalizeName remove espaços extras sem alterar a capitalização escolhida pelo usuário.
func NormalizeName(name string) string {
	return strings.Join(strings.Fields(name), " ")
}

// IsCents informa se o valor cabe em centavos. Valores com mais casas seriam
// arredondados pelo banco e divergiriam do que foi validado.
func IsCents(amount decimal.Decimal) bool {
	return amount.Equal(amount.Round(MoneyScale))
}

// IsPositiveCents é a regra de todo lançamento: positivo e em centavos.
func IsPositiveCents(amount decimal.Decimal) bool {
	return amount.IsPositive() && IsCents(amount)
}
