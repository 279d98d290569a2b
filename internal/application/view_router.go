package application

import (
	"context"
	"fmt"

	"github.com/grse/dashboard/internal/domain"
	"github.com/grse/dashboard/internal/pkg/logger"
)

// ViewRouter maps a session's navigation state to renderable pages.
// Every entry point re-checks permissions against the session's user.
type ViewRouter struct {
	gate  *SessionGate
	data  *DashboardService
	admin *AdminController
}

// NewViewRouter creates a new view router
func NewViewRouter(gate *SessionGate, data *DashboardService, admin *AdminController) *ViewRouter {
	return &ViewRouter{gate: gate, data: data, admin: admin}
}

// Navigation lists the pages the user may open; others are never offered
func (r *ViewRouter) Navigation(session *domain.Session) []NavItem {
	pages := session.User.Permissions.Pages()
	items := make([]NavItem, 0, len(pages))
	for _, p := range pages {
		items = append(items, NavItem{Page: p, Title: p.Title(), Active: p == session.CurrentPage})
	}
	return items
}

// Navigate moves the session to page and renders it. The admin page answers
// a missing permission with an access-denied page and leaves the session
// where it was; any other unpermitted page is ErrPageNotPermitted.
func (r *ViewRouter) Navigate(ctx context.Context, session *domain.Session, page domain.PageID) (*RenderedPage, error) {
	if !CanAccess(&session.User, page) {
		if page == domain.PageAdmin {
			logger.Warn().Str("username", session.User.Username).Msg("Admin page denied")
			return accessDenied(page), nil
		}
		return nil, fmt.Errorf("%w: %s", ErrPageNotPermitted, page)
	}

	session.CurrentPage = page
	if err := r.gate.Save(ctx, session); err != nil {
		return nil, err
	}
	return r.RenderPage(ctx, session, page)
}

// Render renders the session's current page
func (r *ViewRouter) Render(ctx context.Context, session *domain.Session) (*RenderedPage, error) {
	return r.RenderPage(ctx, session, session.CurrentPage)
}

// Landing preloads every section the user can see in one concurrent pass and
// renders the session's current page from that data. A page that fails to
// render is logged and left out; the overview is always returned.
func (r *ViewRouter) Landing(ctx context.Context, session *domain.Session) *LandingView {
	sections := sectionsForUser(&session.User)
	snap := r.data.Load(ctx, sections)

	view := &LandingView{Overview: overviewOf(sections, snap)}
	page, err := r.renderFrom(ctx, session, session.CurrentPage, snap)
	if err != nil {
		logger.Warn().Err(err).Str("page", session.CurrentPage.String()).Msg("Landing page not rendered")
		return view
	}
	view.Page = page
	return view
}

// RenderPage renders page for the session without moving it there
func (r *ViewRouter) RenderPage(ctx context.Context, session *domain.Session, page domain.PageID) (*RenderedPage, error) {
	return r.renderFrom(ctx, session, page, nil)
}

// renderFrom renders page from snap, fetching the page's own sections when snap is nil
func (r *ViewRouter) renderFrom(ctx context.Context, session *domain.Session, page domain.PageID, snap *Snapshot) (*RenderedPage, error) {
	if !CanAccess(&session.User, page) {
		if page == domain.PageAdmin {
			return accessDenied(page), nil
		}
		return nil, fmt.Errorf("%w: %s", ErrPageNotPermitted, page)
	}

	if snap == nil && page != domain.PageAdmin {
		snap = r.data.Load(ctx, sectionsFor(page))
	}

	out := &RenderedPage{Page: page, Title: page.Title()}

	switch page {
	case domain.PageHome:
		out.Home = r.homeView(snap)
	case domain.PageProjects:
		out.Projects = r.projectsView(snap)
	case domain.PageFinancials:
		out.Financials = r.financialsView(snap)
	case domain.PageSupplyChain:
		out.SupplyChain = r.supplyChainView(snap)
	case domain.PageWhatIf:
		view, err := r.whatIfView(ctx, session, snap)
		if err != nil {
			return nil, err
		}
		out.WhatIf = view
	case domain.PageAdmin:
		out.Admin = r.adminView(ctx)
	}

	return out, nil
}

// Logout ends the session
func (r *ViewRouter) Logout(ctx context.Context, session *domain.Session) error {
	return r.gate.Logout(ctx, session)
}

// SelectWhatIfProject switches the simulated project; the scenario resets to original
func (r *ViewRouter) SelectWhatIfProject(ctx context.Context, session *domain.Session, id domain.ProjectID) (*RenderedPage, error) {
	if !CanAccess(&session.User, domain.PageWhatIf) {
		return nil, fmt.Errorf("%w: %s", ErrPageNotPermitted, domain.PageWhatIf)
	}

	projects, err := r.data.Projects(ctx)
	if err != nil {
		return nil, err
	}
	sel, err := SwitchProject(projects, id)
	if err != nil {
		return nil, err
	}

	session.WhatIf = sel
	if err := r.gate.Save(ctx, session); err != nil {
		return nil, err
	}
	return r.RenderPage(ctx, session, domain.PageWhatIf)
}

// SelectWhatIfScenario switches the scenario of the active project
func (r *ViewRouter) SelectWhatIfScenario(ctx context.Context, session *domain.Session, id domain.ScenarioID) (*RenderedPage, error) {
	if !CanAccess(&session.User, domain.PageWhatIf) {
		return nil, fmt.Errorf("%w: %s", ErrPageNotPermitted, domain.PageWhatIf)
	}

	projects, err := r.data.Projects(ctx)
	if err != nil {
		return nil, err
	}
	sel, err := SwitchScenario(session.WhatIf, projects, id)
	if err != nil {
		return nil, err
	}

	session.WhatIf = sel
	if err := r.gate.Save(ctx, session); err != nil {
		return nil, err
	}
	return r.RenderPage(ctx, session, domain.PageWhatIf)
}

// ProjectDetail is the drill-down of one project
func (r *ViewRouter) ProjectDetail(ctx context.Context, session *domain.Session, id domain.ProjectID) (*domain.Project, error) {
	if !CanAccess(&session.User, domain.PageProjects) {
		return nil, fmt.Errorf("%w: %s", ErrPageNotPermitted, domain.PageProjects)
	}

	projects, err := r.data.Projects(ctx)
	if err != nil {
		return nil, err
	}
	for i := range projects {
		if projects[i].ProjectID == id {
			return &projects[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrProjectNotFound, id)
}

// QuarterDetail is the drill-down of one financial quarter
func (r *ViewRouter) QuarterDetail(ctx context.Context, session *domain.Session, name string) (*QuarterDetailView, error) {
	if !CanAccess(&session.User, domain.PageFinancials) {
		return nil, fmt.Errorf("%w: %s", ErrPageNotPermitted, domain.PageFinancials)
	}

	financials, err := r.data.Financials(ctx)
	if err != nil {
		return nil, err
	}
	q, ok := financials.Quarter(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrQuarterNotFound, name)
	}

	return &QuarterDetailView{
		Name:             q.Name,
		Revenue:          q.Revenue,
		Expenditure:      q.Expenditure,
		Breakdown:        q.DetailSlices(),
		TotalExpenditure: q.DetailTotal(),
	}, nil
}

func accessDenied(page domain.PageID) *RenderedPage {
	return &RenderedPage{
		Page:         page,
		Title:        page.Title(),
		AccessDenied: true,
		Message:      accessDeniedMessage,
	}
}

func (r *ViewRouter) homeView(snap *Snapshot) *HomeView {
	health := SystemHealth{Message: backendDownMessage}
	if snap.StatusLoaded {
		health = SystemHealth{Message: snap.Status, Connected: true}
	}
	return &HomeView{
		Heading: "Leadership Overview",
		Cards:   homeCards(),
		Health:  health,
	}
}

func (r *ViewRouter) projectsView(snap *Snapshot) *ProjectsView {
	if !snap.ProjectsLoaded || len(snap.Projects) == 0 {
		return &ProjectsView{Loading: true}
	}
	return &ProjectsView{
		Narrative:    r.data.Enricher().Narrative(domain.PageProjects),
		Distribution: statusDistribution(snap.Projects),
		Projects:     snap.Projects,
	}
}

func (r *ViewRouter) financialsView(snap *Snapshot) *FinancialsView {
	if !snap.FinancialsLoaded || len(snap.Financials.Quarters) == 0 {
		return &FinancialsView{Loading: true}
	}

	trend := make([]domain.RawQuarter, len(snap.Financials.Quarters))
	for i, q := range snap.Financials.Quarters {
		trend[i] = q.RawQuarter
	}
	return &FinancialsView{
		Narrative:            r.data.Enricher().Narrative(domain.PageFinancials),
		Trend:                trend,
		ExpenditureBreakdown: snap.Financials.ExpenditureBreakdown,
		Quarters:             quarterRows(snap.Financials.Quarters),
	}
}

func (r *ViewRouter) supplyChainView(snap *Snapshot) *SupplyChainView {
	if !snap.SuppliersLoaded || len(snap.Suppliers) == 0 {
		return &SupplyChainView{Loading: true}
	}
	return &SupplyChainView{
		Narrative: r.data.Enricher().Narrative(domain.PageSupplyChain),
		Suppliers: snap.Suppliers,
	}
}

func (r *ViewRouter) whatIfView(ctx context.Context, session *domain.Session, snap *Snapshot) (*WhatIfView, error) {
	if !snap.ProjectsLoaded {
		return &WhatIfView{Loading: true}, nil
	}

	project, sel, ok := ActiveProject(session.WhatIf, snap.Projects)
	if !ok {
		return &WhatIfView{Loading: true}, nil
	}
	if sel != session.WhatIf {
		session.WhatIf = sel
		if err := r.gate.Save(ctx, session); err != nil {
			logger.Warn().Err(err).Str("session_id", session.ID.String()).Msg("Failed to persist what-if selection")
		}
	}

	cmp, err := CompareToBaseline(&project, sel.Scenario)
	if err != nil {
		return nil, err
	}

	options := make([]ProjectOption, len(snap.Projects))
	for i, p := range snap.Projects {
		options[i] = ProjectOption{ID: p.ProjectID, Name: p.ProjectName, Selected: p.ProjectID == sel.ProjectID}
	}
	scenarios := make([]ScenarioOption, 0, len(scenarioLabels))
	for _, id := range domain.ScenarioIDs() {
		scenarios = append(scenarios, ScenarioOption{ID: id, Label: scenarioLabels[id], Selected: id == sel.Scenario})
	}

	return &WhatIfView{
		Projects:   options,
		Scenarios:  scenarios,
		Subheading: comparisonSubheading,
		Cards:      whatIfCards(cmp.Selected),
		Comparison: cmp,
	}, nil
}

func (r *ViewRouter) adminView(ctx context.Context) *AdminView {
	users, err := r.admin.Refresh(ctx)
	if err != nil {
		logger.Warn().Err(err).Str("section", "users").Msg("Backend fetch failed")
		return &AdminView{Loading: true}
	}
	return &AdminView{Users: users}
}
