package ports

import (
	"context"

	"crossfold/domain/dataset"
)

// MatrixSourcePort supplies the numeric matrix a run operates on.
// Implementations own file-format concerns; the pipeline only ever sees
// a validated MatrixBundle.
type MatrixSourcePort interface {
	// Load reads the source into a bundle. responseColumn names the
	// column to split off as the supervised response; empty means
	// unsupervised.
	Load(ctx context.Context, responseColumn string) (*dataset.MatrixBundle, error)
}
