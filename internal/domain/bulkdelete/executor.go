package bulkdelete

import "context"

// Executor aplica o conjunto resolvido numa única unidade atômica de
// trabalho: todos os deletes e cancelamentos entram juntos ou nenhum
// entra.
type Executor interface {
	Apply(ctx context.Context, resolved *ResolvedSet) (*ExecuteResult, error)
}
