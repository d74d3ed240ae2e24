// pkg/loader/persister.go
package loader

import (
	"context"

	"github.com/customer-churn/data-pipeline/pkg/modeler"
)

// Persister writes a star model to a destination with replace semantics:
// each table fully overwrites any previously persisted table of the same
// name. No merge, no append, no versioning. Persisters do not retry; the
// caller decides whether to rerun the whole pipeline.
type Persister interface {
	Persist(ctx context.Context, m *modeler.StarModel) error
}
