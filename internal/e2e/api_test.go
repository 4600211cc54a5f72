package e2e

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func company(code, typ string, parent *int64) map[string]any {
	body := map[string]any{"code": code, "name": code + " company", "company_type": typ, "currency": "IDR"}
	if parent != nil {
		body["parent_id"] = *parent
	}
	return body
}

func TestCompanyHierarchyLifecycle(t *testing.T) {
	h := newHarness(t, nil)

	created := h.do(http.MethodPost, "/api/companies", company("HOLD", "holding", nil))
	require.Equal(t, http.StatusCreated, created.Status, string(created.Raw))
	holdingID := created.id(t)
	assert.EqualValues(t, 1, created.Body["level"])
	assert.EqualValues(t, holdingID, created.Body["root_id"])

	sub := h.do(http.MethodPost, "/api/companies", company("SUB", "subsidiary", &holdingID))
	require.Equal(t, http.StatusCreated, sub.Status, string(sub.Raw))
	subID := sub.id(t)
	assert.EqualValues(t, 2, sub.Body["level"])
	assert.EqualValues(t, holdingID, sub.Body["root_id"])

	rejected := h.do(http.MethodPost, "/api/companies", company("SUB2", "subsidiary", &subID))
	assert.Equal(t, http.StatusBadRequest, rejected.Status)
	assert.Equal(t, "Subsidiaries must have a Holding company as parent.", rejected.detail())

	blocked := h.do(http.MethodDelete, fmt.Sprintf("/api/companies/%d", holdingID), nil)
	assert.Equal(t, http.StatusConflict, blocked.Status)

	tree := h.do(http.MethodGet, "/api/companies/hierarchy", nil)
	require.Equal(t, http.StatusOK, tree.Status)
	roots := tree.Body["hierarchy"].([]any)
	require.Len(t, roots, 1)
	children := roots[0].(map[string]any)["children"].([]any)
	assert.Len(t, children, 1)

	assert.Equal(t, http.StatusNoContent, h.do(http.MethodDelete, fmt.Sprintf("/api/companies/%d", subID), nil).Status)
	assert.Equal(t, http.StatusNoContent, h.do(http.MethodDelete, fmt.Sprintf("/api/companies/%d", holdingID), nil).Status)
	assert.Equal(t, http.StatusNotFound, h.do(http.MethodGet, fmt.Sprintf("/api/companies/%d", holdingID), nil).Status)
}

func TestUnknownCompanyAndBadIDs(t *testing.T) {
	h := newHarness(t, nil)

	assert.Equal(t, http.StatusNotFound, h.do(http.MethodGet, "/api/companies/42", nil).Status)
	assert.Equal(t, http.StatusBadRequest, h.do(http.MethodGet, "/api/companies/abc", nil).Status)
	assert.Equal(t, http.StatusNotFound, h.do(http.MethodGet, "/api/companies/42/accounts", nil).Status)
}

func TestConsolidatedReportOverSeededGroup(t *testing.T) {
	h := newHarness(t, nil)
	ids, err := h.app.Seed(t.Context())
	require.NoError(t, err)

	res := h.do(http.MethodGet, fmt.Sprintf("/api/consolidation/report?period=2024-12&group_id=%d", ids.Companies["HLD"]), nil)
	require.Equal(t, http.StatusOK, res.Status, string(res.Raw))

	rows := map[string]map[string]any{}
	for _, raw := range res.Body["accounts"].([]any) {
		row := raw.(map[string]any)
		rows[row["account_code"].(string)] = row
	}
	assert.Equal(t, "950000", rows["1120"]["consolidated_balance"])
	assert.Equal(t, "865000", rows["1120"]["net_balance"])
	assert.Equal(t, "690000", rows["2110"]["consolidated_balance"])
	assert.Equal(t, "605000", rows["2110"]["net_balance"])
	assert.EqualValues(t, 2, res.Body["eliminations_applied"])
}

func TestConsolidatedReportErrors(t *testing.T) {
	h := newHarness(t, nil)
	_, err := h.app.Seed(t.Context())
	require.NoError(t, err)

	cases := []struct {
		query  string
		status int
	}{
		{"", http.StatusBadRequest},
		{"?period=12-2024", http.StatusBadRequest},
		{"?period=2024-12&scope=equity", http.StatusNotImplemented},
		{"?period=2024-12&scope=weighted", http.StatusBadRequest},
		{"?period=2024-12&group_id=x", http.StatusBadRequest},
		{"?period=2024-12&entities=1,999", http.StatusBadRequest},
	}
	for _, tc := range cases {
		res := h.do(http.MethodGet, "/api/consolidation/report"+tc.query, nil)
		assert.Equal(t, tc.status, res.Status, tc.query)
	}
}

func TestChartOfAccountsOverHTTP(t *testing.T) {
	h := newHarness(t, nil)
	holdingID := h.do(http.MethodPost, "/api/companies", company("HOLD", "holding", nil)).id(t)
	base := fmt.Sprintf("/api/companies/%d/accounts", holdingID)

	header := h.do(http.MethodPost, base, map[string]any{"account_code": "1000", "name": "Assets", "account_type": "asset"})
	require.Equal(t, http.StatusCreated, header.Status, string(header.Raw))
	headerID := header.id(t)

	leaf := h.do(http.MethodPost, base, map[string]any{
		"account_code": "1100", "name": "Cash", "account_type": "asset",
		"parent_id": headerID, "is_postable": true, "balance": "250.50",
	})
	require.Equal(t, http.StatusCreated, leaf.Status, string(leaf.Raw))

	mismatch := h.do(http.MethodPost, base, map[string]any{
		"account_code": "1200", "name": "Payables", "account_type": "liability", "parent_id": headerID, "is_postable": true,
	})
	assert.Equal(t, http.StatusBadRequest, mismatch.Status)

	tree := h.do(http.MethodGet, base, nil)
	require.Equal(t, http.StatusOK, tree.Status)
	root := tree.Body["accounts"].([]any)[0].(map[string]any)
	assert.Equal(t, "250.5", root["display_balance"])

	assert.Equal(t, http.StatusConflict, h.do(http.MethodDelete, fmt.Sprintf("/api/accounts/%d", headerID), nil).Status)
	assert.Equal(t, http.StatusConflict, h.do(http.MethodDelete, fmt.Sprintf("/api/companies/%d", holdingID), nil).Status)
}

func TestMasterDataOverHTTP(t *testing.T) {
	h := newHarness(t, nil)
	holdingID := h.do(http.MethodPost, "/api/companies", company("HOLD", "holding", nil)).id(t)

	created := h.do(http.MethodPost, "/api/masterdata/customers", map[string]any{
		"company_id": holdingID, "code": "C-1", "name": "Acme", "credit_limit": "1000",
	})
	require.Equal(t, http.StatusCreated, created.Status, string(created.Raw))
	customerID := created.id(t)

	list := h.do(http.MethodGet, fmt.Sprintf("/api/masterdata/customers?company_id=%d", holdingID), nil)
	require.Equal(t, http.StatusOK, list.Status)
	assert.EqualValues(t, 1, list.Body["total"])
	page := list.Body["pagination"].(map[string]any)
	assert.EqualValues(t, 1, page["total_pages"])
	assert.Equal(t, http.StatusBadRequest, h.do(http.MethodGet, "/api/masterdata/customers?page=0", nil).Status)

	bad := h.do(http.MethodPost, "/api/masterdata/customers", map[string]any{
		"company_id": holdingID, "code": "C-2", "name": "Neg", "credit_limit": "-5",
	})
	assert.Equal(t, http.StatusBadRequest, bad.Status)

	assert.Equal(t, http.StatusConflict, h.do(http.MethodDelete, fmt.Sprintf("/api/companies/%d", holdingID), nil).Status)
	assert.Equal(t, http.StatusNoContent, h.do(http.MethodDelete, fmt.Sprintf("/api/masterdata/customers/%d", customerID), nil).Status)
	assert.Equal(t, http.StatusNotFound, h.do(http.MethodGet, fmt.Sprintf("/api/masterdata/customers/%d", customerID), nil).Status)
}

func TestIdempotentCreate(t *testing.T) {
	h := newHarness(t, nil)
	key := "5b0c3f7e-8f0e-4a57-9d0a-2f3b8c1d9e44"

	first := h.do(http.MethodPost, "/api/companies", company("HOLD", "holding", nil), "Idempotency-Key", key)
	require.Equal(t, http.StatusCreated, first.Status)
	replay := h.do(http.MethodPost, "/api/companies", company("HOLD", "holding", nil), "Idempotency-Key", key)
	assert.Equal(t, http.StatusConflict, replay.Status)

	list := h.do(http.MethodGet, "/api/companies", nil)
	assert.EqualValues(t, 1, list.Body["total"])
}

func TestOperationalEndpoints(t *testing.T) {
	h := newHarness(t, nil)

	health := h.do(http.MethodGet, "/healthz", nil)
	require.Equal(t, http.StatusOK, health.Status)
	assert.Equal(t, "ok", health.Body["status"])
	assert.Equal(t, "disabled", health.Body["redis"])

	jobs := h.do(http.MethodGet, "/jobs/health", nil)
	require.Equal(t, http.StatusOK, jobs.Status)
	assert.Equal(t, false, jobs.Body["enabled"])

	h.do(http.MethodGet, "/api/companies", nil)
	metrics := h.do(http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, metrics.Status)
	assert.Contains(t, string(metrics.Raw), "odyssey_http_requests_total")
	assert.Contains(t, string(metrics.Raw), `odyssey_store_entities{kind="companies"} 0`)
}
