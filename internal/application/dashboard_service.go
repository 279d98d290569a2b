package application

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/grse/dashboard/internal/domain"
	"github.com/grse/dashboard/internal/pkg/logger"
)

// DataSource is the read side of the backend
type DataSource interface {
	Status(ctx context.Context) (string, error)
	Projects(ctx context.Context) ([]domain.RawProject, error)
	Financials(ctx context.Context) (*domain.RawFinancials, error)
	Suppliers(ctx context.Context) ([]domain.RawSupplier, error)
}

// Section is one independently fetched block of dashboard data
type Section uint8

const (
	SectionStatus Section = 1 << iota
	SectionProjects
	SectionFinancials
	SectionSuppliers
)

// sectionsFor lists the data a page renders from
func sectionsFor(page domain.PageID) Section {
	switch page {
	case domain.PageHome:
		return SectionStatus
	case domain.PageProjects, domain.PageWhatIf:
		return SectionProjects
	case domain.PageFinancials:
		return SectionFinancials
	case domain.PageSupplyChain:
		return SectionSuppliers
	default:
		return 0
	}
}

// sectionsForUser is every section behind the user's permitted pages, plus
// the backend status shown on login
func sectionsForUser(user *domain.User) Section {
	sections := SectionStatus
	for _, p := range user.Permissions.Pages() {
		sections |= sectionsFor(p)
	}
	return sections
}

// Snapshot holds enriched data for the requested sections. A section whose
// fetch failed keeps its Loaded flag false and the page shows it as loading.
type Snapshot struct {
	Status           string
	StatusLoaded     bool
	Projects         []domain.Project
	ProjectsLoaded   bool
	Financials       domain.Financials
	FinancialsLoaded bool
	Suppliers        []domain.Supplier
	SuppliersLoaded  bool
}

// DashboardService fetches and enriches backend data
type DashboardService struct {
	source   DataSource
	enricher *Enricher
}

// NewDashboardService creates a new dashboard service
func NewDashboardService(source DataSource, enricher *Enricher) *DashboardService {
	if enricher == nil {
		enricher = NewEnricher(nil)
	}
	return &DashboardService{source: source, enricher: enricher}
}

// Enricher returns the enricher used for backend records
func (s *DashboardService) Enricher() *Enricher {
	return s.enricher
}

// Load fetches the requested sections concurrently. Failures never abort the
// other fetches; they are logged and leave their section unloaded.
func (s *DashboardService) Load(ctx context.Context, sections Section) *Snapshot {
	snap := &Snapshot{}
	started := time.Now()

	var g errgroup.Group
	g.SetLimit(4)

	if sections&SectionStatus != 0 {
		g.Go(func() error {
			msg, err := s.source.Status(ctx)
			if err != nil {
				logger.Warn().Err(err).Str("section", "status").Msg("Backend fetch failed")
				return nil
			}
			snap.Status, snap.StatusLoaded = msg, true
			return nil
		})
	}

	if sections&SectionProjects != 0 {
		g.Go(func() error {
			raw, err := s.source.Projects(ctx)
			if err != nil {
				logger.Warn().Err(err).Str("section", "projects").Msg("Backend fetch failed")
				return nil
			}
			snap.Projects, snap.ProjectsLoaded = s.enricher.EnrichProjects(raw), true
			return nil
		})
	}

	if sections&SectionFinancials != 0 {
		g.Go(func() error {
			raw, err := s.source.Financials(ctx)
			if err != nil {
				logger.Warn().Err(err).Str("section", "financials").Msg("Backend fetch failed")
				return nil
			}
			snap.Financials, snap.FinancialsLoaded = s.enricher.EnrichFinancials(raw), true
			return nil
		})
	}

	if sections&SectionSuppliers != 0 {
		g.Go(func() error {
			raw, err := s.source.Suppliers(ctx)
			if err != nil {
				logger.Warn().Err(err).Str("section", "suppliers").Msg("Backend fetch failed")
				return nil
			}
			snap.Suppliers, snap.SuppliersLoaded = s.enricher.EnrichSuppliers(raw), true
			return nil
		})
	}

	_ = g.Wait()
	logger.Debug().
		Uint8("sections", uint8(sections)).
		Dur("elapsed", time.Since(started)).
		Msg("Dashboard sections loaded")
	return snap
}

// Projects fetches and enriches the project list
func (s *DashboardService) Projects(ctx context.Context) ([]domain.Project, error) {
	raw, err := s.source.Projects(ctx)
	if err != nil {
		return nil, err
	}
	return s.enricher.EnrichProjects(raw), nil
}

// Financials fetches and enriches the financials payload
func (s *DashboardService) Financials(ctx context.Context) (domain.Financials, error) {
	raw, err := s.source.Financials(ctx)
	if err != nil {
		return domain.Financials{}, err
	}
	return s.enricher.EnrichFinancials(raw), nil
}
