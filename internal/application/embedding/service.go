package embedding

import (
	"context"

	"github.com/turtacn/OrphaMine/internal/domain/molecule"
	"github.com/turtacn/OrphaMine/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/OrphaMine/internal/infrastructure/tabular"
	"github.com/turtacn/OrphaMine/pkg/errors"
)

// MoleculeSource yields the compounds to embed.
type MoleculeSource interface {
	ReadMolecules(ctx context.Context) ([]*molecule.Molecule, error)
}

// Request names the inputs and outputs of an embedding run.  An empty
// output path skips that side.
type Request struct {
	DiseaseListPath string
	CompoundsOut    string
	DiseasesOut     string
}

// Result reports both sides of a run.
type Result struct {
	Compounds *BuildStats
	Diseases  *BuildStats
}

// Service builds and writes both embedding files.
type Service struct {
	compounds *Builder
	diseases  *Builder
	dataset   MoleculeSource
	logger    logging.Logger
}

// NewService creates a Service.
func NewService(compounds, diseases *Builder, dataset MoleculeSource, logger logging.Logger) *Service {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Service{compounds: compounds, diseases: diseases, dataset: dataset, logger: logger.Named("embed-run")}
}

// Run embeds the dataset compounds and the disease list.  Each file is
// written atomically after its set is complete.
func (s *Service) Run(ctx context.Context, req Request) (*Result, error) {
	if req.CompoundsOut == "" && req.DiseasesOut == "" {
		return nil, errors.Configuration("no embedding output requested")
	}
	res := &Result{}

	if req.CompoundsOut != "" {
		records, err := s.dataset.ReadMolecules(ctx)
		if err != nil {
			return nil, errors.Wrap(err, errors.CodeUnknown, "read compound dataset")
		}
		set, stats, err := s.compounds.Build(ctx, CompoundItems(records))
		if err != nil {
			return nil, err
		}
		if err := tabular.WriteEmbeddingSet(req.CompoundsOut, set); err != nil {
			return nil, err
		}
		res.Compounds = stats
		s.logger.Info("compound embeddings written",
			logging.String("path", req.CompoundsOut), logging.Int("count", set.Len()))
	}

	if req.DiseasesOut != "" {
		names, err := tabular.ReadDiseaseList(req.DiseaseListPath)
		if err != nil {
			return nil, errors.Wrap(err, errors.CodeUnknown, "read disease list")
		}
		set, stats, err := s.diseases.Build(ctx, DiseaseItems(names))
		if err != nil {
			return nil, err
		}
		if err := tabular.WriteEmbeddingSet(req.DiseasesOut, set); err != nil {
			return nil, err
		}
		res.Diseases = stats
		s.logger.Info("disease embeddings written",
			logging.String("path", req.DiseasesOut), logging.Int("count", set.Len()))
	}
	return res, nil
}

//Personal.AI order the ending
