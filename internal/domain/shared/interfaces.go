package shared

import "context"

// Transactor executa fn dentro de uma transação. Repositórios chamados com o
// ctx recebido por fn participam da mesma transação.
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
