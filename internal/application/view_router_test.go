package application_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grse/dashboard/internal/application"
	"github.com/grse/dashboard/internal/domain"
	"github.com/grse/dashboard/internal/infrastructure/backend/backendtest"
)

func TestValidLoginRendersHomeWithKPICards(t *testing.T) {
	h := newHarness(t)
	session := h.login(t, backendtest.ViewerUsername, backendtest.ViewerPassword)

	page, err := h.router.Render(context.Background(), session)
	require.NoError(t, err)
	require.NotNil(t, page.Home)
	assert.Equal(t, domain.PageHome, page.Page)
	assert.Equal(t, "Dashboard", page.Title)

	require.Len(t, page.Home.Cards, 4)
	assert.Equal(t, application.KPICard{Title: "Total Projects", Value: "120", Change: "+5%", Status: application.KPIIncrease}, page.Home.Cards[0])
	assert.Equal(t, "Up 3", page.Home.Cards[2].Change)
	assert.Equal(t, application.KPIInfo, page.Home.Cards[3].Status)

	assert.True(t, page.Home.Health.Connected)
	assert.Equal(t, "Connected to the API and ready to serve data.", page.Home.Health.Message)
}

func TestHomeHealthWhenBackendFails(t *testing.T) {
	h := newHarness(t)
	session := h.login(t, backendtest.ViewerUsername, backendtest.ViewerPassword)
	h.srv.Fail(http.MethodGet, "/api/status", http.StatusServiceUnavailable, "down")

	page, err := h.router.Render(context.Background(), session)
	require.NoError(t, err)
	assert.False(t, page.Home.Health.Connected)
	assert.Equal(t, "Failed to connect to the backend.", page.Home.Health.Message)
}

func TestNavigationOffersOnlyPermittedPages(t *testing.T) {
	h := newHarness(t)
	session := h.login(t, backendtest.ViewerUsername, backendtest.ViewerPassword)

	items := h.router.Navigation(session)
	require.Len(t, items, 2)
	assert.Equal(t, application.NavItem{Page: domain.PageHome, Title: "Dashboard", Active: true}, items[0])
	assert.Equal(t, domain.PageProjects, items[1].Page)
}

func TestNavigateRejectsUnpermittedPage(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	session := h.login(t, backendtest.ViewerUsername, backendtest.ViewerPassword)

	for _, p := range []domain.PageID{domain.PageFinancials, domain.PageSupplyChain, domain.PageWhatIf, domain.PageID(42)} {
		_, err := h.router.Navigate(ctx, session, p)
		assert.ErrorIs(t, err, application.ErrPageNotPermitted, p.String())
	}
	assert.Equal(t, domain.PageHome, session.CurrentPage)

	page, err := h.router.Navigate(ctx, session, domain.PageProjects)
	require.NoError(t, err)
	require.NotNil(t, page.Projects)
	assert.Equal(t, domain.PageProjects, session.CurrentPage)

	stored, err := h.repo.GetByID(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PageProjects, stored.CurrentPage)
}

func TestAdminPageDeniedWithoutPermission(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	session := h.login(t, backendtest.ViewerUsername, backendtest.ViewerPassword)

	page, err := h.router.Navigate(ctx, session, domain.PageAdmin)
	require.NoError(t, err)
	assert.True(t, page.AccessDenied)
	assert.Equal(t, "Access Denied. You do not have permission to view this page.", page.Message)
	assert.Nil(t, page.Admin)
	assert.Equal(t, domain.PageHome, session.CurrentPage)

	// state forced onto the admin page still renders the denial
	session.CurrentPage = domain.PageAdmin
	session.User.Role = "Admin"
	page, err = h.router.Render(ctx, session)
	require.NoError(t, err)
	assert.True(t, page.AccessDenied)
	assert.Nil(t, page.Admin)
	assert.Zero(t, h.srv.Hits(http.MethodGet, "/api/users"))
}

func TestAdminPageListsUsers(t *testing.T) {
	h := newHarness(t)
	session := h.login(t, backendtest.AdminUsername, backendtest.AdminPassword)

	page, err := h.router.Navigate(context.Background(), session, domain.PageAdmin)
	require.NoError(t, err)
	require.NotNil(t, page.Admin)
	assert.False(t, page.AccessDenied)
	assert.Len(t, page.Admin.Users, 2)
}

func TestProjectsPage(t *testing.T) {
	h := newHarness(t)
	session := h.login(t, backendtest.AdminUsername, backendtest.AdminPassword)

	page, err := h.router.RenderPage(context.Background(), session, domain.PageProjects)
	require.NoError(t, err)
	view := page.Projects
	require.NotNil(t, view)
	assert.False(t, view.Loading)
	assert.Len(t, view.Projects, 4)
	assert.Equal(t, []application.StatusCount{
		{Status: domain.ProjectStatusOnTrack, Count: 2},
		{Status: domain.ProjectStatusAtRisk, Count: 1},
		{Status: domain.ProjectStatusDelayed, Count: 1},
	}, view.Distribution)
	assert.Contains(t, view.Narrative, "5% budget increase")
}

func TestFailedFetchLeavesSectionLoading(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	session := h.login(t, backendtest.AdminUsername, backendtest.AdminPassword)

	h.srv.Fail(http.MethodGet, "/api/projects", http.StatusInternalServerError, "boom")
	h.srv.Fail(http.MethodGet, "/api/financials", http.StatusInternalServerError, "boom")
	h.srv.Fail(http.MethodGet, "/api/suppliers", http.StatusInternalServerError, "boom")
	h.srv.Fail(http.MethodGet, "/api/users", http.StatusInternalServerError, "boom")

	for _, p := range []domain.PageID{domain.PageProjects, domain.PageFinancials, domain.PageSupplyChain, domain.PageWhatIf, domain.PageAdmin} {
		page, err := h.router.RenderPage(ctx, session, p)
		require.NoError(t, err, p.String())
		switch p {
		case domain.PageProjects:
			assert.True(t, page.Projects.Loading)
		case domain.PageFinancials:
			assert.True(t, page.Financials.Loading)
		case domain.PageSupplyChain:
			assert.True(t, page.SupplyChain.Loading)
		case domain.PageWhatIf:
			assert.True(t, page.WhatIf.Loading)
		case domain.PageAdmin:
			assert.True(t, page.Admin.Loading)
		}
	}
}

func TestFinancialsPage(t *testing.T) {
	h := newHarness(t)
	session := h.login(t, backendtest.AdminUsername, backendtest.AdminPassword)

	page, err := h.router.RenderPage(context.Background(), session, domain.PageFinancials)
	require.NoError(t, err)
	view := page.Financials
	require.Len(t, view.Quarters, 4)
	require.Len(t, view.Trend, 4)
	assert.Len(t, view.ExpenditureBreakdown, 4)

	q2 := view.Quarters[1]
	assert.Equal(t, "Q2 2024", q2.Name)
	assert.Equal(t, "0.3", q2.Variance.String())
	assert.False(t, q2.Surplus)
	assert.Equal(t, "0.95", view.Quarters[3].Variance.String())
}

func TestSupplyChainPage(t *testing.T) {
	h := newHarness(t)
	session := h.login(t, backendtest.AdminUsername, backendtest.AdminPassword)

	page, err := h.router.RenderPage(context.Background(), session, domain.PageSupplyChain)
	require.NoError(t, err)
	require.Len(t, page.SupplyChain.Suppliers, 3)
	assert.Contains(t, page.SupplyChain.Narrative, "Frigate Modernization")
}

func TestWhatIfFlow(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	session := h.login(t, backendtest.AdminUsername, backendtest.AdminPassword)

	page, err := h.router.Navigate(ctx, session, domain.PageWhatIf)
	require.NoError(t, err)
	view := page.WhatIf
	require.NotNil(t, view)
	assert.Len(t, view.Projects, 4)
	assert.True(t, view.Projects[0].Selected)
	require.Len(t, view.Scenarios, 3)
	assert.Equal(t, "Current Status (Original)", view.Scenarios[0].Label)
	assert.True(t, view.Scenarios[0].Selected)
	assert.Equal(t, "Comparing the selected scenario against the original plan.", view.Subheading)
	assert.Equal(t, domain.WhatIfSelection{ProjectID: "P001", Scenario: domain.ScenarioOriginal}, session.WhatIf)

	page, err = h.router.SelectWhatIfScenario(ctx, session, domain.ScenarioScenario2)
	require.NoError(t, err)
	assert.Equal(t, domain.ScenarioScenario2, page.WhatIf.Comparison.Scenario)
	assert.Equal(t, []application.KPICard{
		{Title: "Predicted Completion", Value: "2025-11-20"},
		{Title: "Projected Final Cost", Value: "₹5.75 Cr"},
		{Title: "Predicted Risk Score", Value: "5/10", Status: application.KPIWarning},
	}, page.WhatIf.Cards)

	_, err = h.router.SelectWhatIfScenario(ctx, session, "scenario7")
	var unknown *domain.UnknownScenarioError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, domain.ScenarioScenario2, session.WhatIf.Scenario)
}

func TestWhatIfProjectSwitchResetsScenario(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	session := h.login(t, backendtest.AdminUsername, backendtest.AdminPassword)

	for _, prior := range []domain.ScenarioID{domain.ScenarioScenario1, domain.ScenarioScenario2} {
		_, err := h.router.SelectWhatIfProject(ctx, session, "P001")
		require.NoError(t, err)
		_, err = h.router.SelectWhatIfScenario(ctx, session, prior)
		require.NoError(t, err)

		page, err := h.router.SelectWhatIfProject(ctx, session, "P003")
		require.NoError(t, err)
		assert.Equal(t, domain.ScenarioOriginal, session.WhatIf.Scenario, "prior %s", prior)
		assert.Equal(t, domain.ScenarioOriginal, page.WhatIf.Comparison.Scenario)
		assert.Equal(t, domain.ProjectID("P003"), page.WhatIf.Comparison.ProjectID)

		stored, err := h.repo.GetByID(ctx, session.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.WhatIfSelection{ProjectID: "P003", Scenario: domain.ScenarioOriginal}, stored.WhatIf)
	}

	_, err := h.router.SelectWhatIfProject(ctx, session, "P404")
	assert.ErrorIs(t, err, application.ErrProjectNotFound)
}

func TestWhatIfRequiresPermission(t *testing.T) {
	h := newHarness(t)
	session := h.login(t, backendtest.ViewerUsername, backendtest.ViewerPassword)

	_, err := h.router.SelectWhatIfProject(context.Background(), session, "P001")
	assert.ErrorIs(t, err, application.ErrPageNotPermitted)
	_, err = h.router.SelectWhatIfScenario(context.Background(), session, domain.ScenarioScenario1)
	assert.ErrorIs(t, err, application.ErrPageNotPermitted)
}

func TestDrillDowns(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	admin := h.login(t, backendtest.AdminUsername, backendtest.AdminPassword)

	project, err := h.router.ProjectDetail(ctx, admin, "P002")
	require.NoError(t, err)
	assert.Equal(t, "Offshore Patrol Vessel", project.ProjectName)
	assert.Equal(t, "Manager P002", project.Manager)

	_, err = h.router.ProjectDetail(ctx, admin, "P404")
	assert.ErrorIs(t, err, application.ErrProjectNotFound)

	quarter, err := h.router.QuarterDetail(ctx, admin, "Q3 2024")
	require.NoError(t, err)
	assert.Equal(t, "7.95", quarter.TotalExpenditure.String())
	require.Len(t, quarter.Breakdown, 3)
	assert.Equal(t, "labor", quarter.Breakdown[0].Name)

	_, err = h.router.QuarterDetail(ctx, admin, "Q9 1999")
	assert.ErrorIs(t, err, application.ErrQuarterNotFound)

	viewer := h.login(t, backendtest.ViewerUsername, backendtest.ViewerPassword)
	_, err = h.router.QuarterDetail(ctx, viewer, "Q3 2024")
	assert.ErrorIs(t, err, application.ErrPageNotPermitted)
}

func TestRouterLogout(t *testing.T) {
	h := newHarness(t)
	session := h.login(t, backendtest.ViewerUsername, backendtest.ViewerPassword)

	require.NoError(t, h.router.Logout(context.Background(), session))
	assert.Zero(t, h.repo.Count())
}

func TestLandingPreloadsEveryPermittedSection(t *testing.T) {
	h := newHarness(t)
	session := h.login(t, backendtest.AdminUsername, backendtest.AdminPassword)

	landing := h.router.Landing(context.Background(), session)
	require.NotNil(t, landing.Page)
	require.NotNil(t, landing.Page.Home)
	assert.True(t, landing.Page.Home.Health.Connected)

	for _, path := range []string{"/api/status", "/api/projects", "/api/financials", "/api/suppliers"} {
		assert.Equal(t, 1, h.srv.Hits(http.MethodGet, path), path)
	}

	ov := landing.Overview
	assert.True(t, ov.Health.Connected)
	require.NotNil(t, ov.Projects)
	assert.Equal(t, 4, *ov.Projects)
	require.NotNil(t, ov.Quarters)
	assert.Equal(t, 4, *ov.Quarters)
	require.NotNil(t, ov.Suppliers)
	assert.Equal(t, len(backendtest.SeedSuppliers()), *ov.Suppliers)
	assert.Empty(t, ov.Loading)
}

func TestLandingSkipsSectionsTheUserCannotSee(t *testing.T) {
	h := newHarness(t)
	session := h.login(t, backendtest.ViewerUsername, backendtest.ViewerPassword)

	landing := h.router.Landing(context.Background(), session)
	require.NotNil(t, landing.Page)
	assert.Equal(t, domain.PageHome, landing.Page.Page)

	assert.Equal(t, 1, h.srv.Hits(http.MethodGet, "/api/status"))
	assert.Equal(t, 1, h.srv.Hits(http.MethodGet, "/api/projects"))
	assert.Zero(t, h.srv.Hits(http.MethodGet, "/api/financials"))
	assert.Zero(t, h.srv.Hits(http.MethodGet, "/api/suppliers"))

	require.NotNil(t, landing.Overview.Projects)
	assert.Nil(t, landing.Overview.Quarters)
	assert.Nil(t, landing.Overview.Suppliers)
}

func TestLandingReportsFailedSections(t *testing.T) {
	h := newHarness(t)
	session := h.login(t, backendtest.AdminUsername, backendtest.AdminPassword)
	h.srv.Fail(http.MethodGet, "/api/suppliers", http.StatusInternalServerError, "boom")

	landing := h.router.Landing(context.Background(), session)
	require.NotNil(t, landing.Page)
	assert.Equal(t, []string{"suppliers"}, landing.Overview.Loading)
	assert.Nil(t, landing.Overview.Suppliers)
	require.NotNil(t, landing.Overview.Projects)
	assert.Equal(t, 4, *landing.Overview.Projects)
}

func TestEmptyListsRenderAsLoading(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	session := h.login(t, backendtest.AdminUsername, backendtest.AdminPassword)

	h.srv.SetProjects([]domain.RawProject{})
	h.srv.SetFinancials(domain.RawFinancials{})
	h.srv.SetSuppliers([]domain.RawSupplier{})

	page, err := h.router.RenderPage(ctx, session, domain.PageProjects)
	require.NoError(t, err)
	assert.True(t, page.Projects.Loading)
	assert.Empty(t, page.Projects.Distribution)

	page, err = h.router.RenderPage(ctx, session, domain.PageFinancials)
	require.NoError(t, err)
	assert.True(t, page.Financials.Loading)

	page, err = h.router.RenderPage(ctx, session, domain.PageSupplyChain)
	require.NoError(t, err)
	assert.True(t, page.SupplyChain.Loading)
}
