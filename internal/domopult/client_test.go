package domopult

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *API {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client, err := New(Config{BaseURL: srv.URL}, srv.Client())
	require.NoError(t, err)
	return client
}

func TestNewRequiresBaseURL(t *testing.T) {
	_, err := New(Config{}, nil)
	assert.Error(t, err)
}

func TestRequestSMSCode(t *testing.T) {
	var gotBody map[string]string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/tenants-registration/code", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.WriteHeader(http.StatusOK)
	})

	err := client.RequestSMSCode(context.Background(), "+79990001122")
	require.NoError(t, err)
	assert.Equal(t, "+79990001122", gotBody["phone"])
}

func TestLoginByCodeReturnsRawBodyToken(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/tenants-registration/login", r.URL.Path)
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "+79990001122", body["phone"])
		assert.Equal(t, "1234", body["code"])
		_, _ = w.Write([]byte("  tok-abc \n"))
	})

	token, err := client.LoginByCode(context.Background(), "+79990001122", "1234")
	require.NoError(t, err)
	assert.Equal(t, "tok-abc", token)
}

func TestLoginByPasswordSendsLoginMethod(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "PERSONAL_OFFICE", body["loginMethod"])
		assert.Equal(t, "user@example.com", body["email"])
		_, _ = w.Write([]byte("tok-xyz"))
	})

	token, err := client.LoginByPassword(context.Background(), "user@example.com", "secret")
	require.NoError(t, err)
	assert.Equal(t, "tok-xyz", token)
}

func TestConfigurationItemsCarriesToken(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "tok-abc", r.Header.Get("X-Auth-Tenant-Token"))
		assert.Equal(t, "/clients/configuration-items", r.URL.Path)
		_, _ = w.Write([]byte(`{"items":[{"id":77,"personalAccount":{"id":55,"number":"000123"}}]}`))
	})

	items, err := client.ConfigurationItems(context.Background(), "tok-abc")
	require.NoError(t, err)
	require.Len(t, items.Items, 1)
	assert.Equal(t, int64(77), items.Items[0].ID)
	require.NotNil(t, items.Items[0].PersonalAccount)
	assert.Equal(t, int64(55), items.Items[0].PersonalAccount.ID)
}

func TestPaymentsDetailQuery(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/personal_account/payments/55", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "0", q.Get("page"))
		assert.Equal(t, "15", q.Get("size"))
		_, _ = w.Write([]byte(`{"results":[{"id":1,"balance":-100.5,"personalAccount":{"number":"000123","utilitiesBalance":42.0}}]}`))
	})

	page, err := client.PaymentsDetail(context.Background(), "tok", "55")
	require.NoError(t, err)
	require.Len(t, page.Results, 1)
	assert.Equal(t, "000123", page.Results[0].PersonalAccount.Number)
	assert.InDelta(t, 42.0, page.Results[0].PersonalAccount.UtilitiesBalance, 0.001)
}

func TestPaymentsDetailDecodesTenantClient(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"results":[{"id":1,"client":{"id":7,"contact":{"name":"Иван Иванов","emails":[{"email":"user@mail.com"}]}}}]}`))
	})

	page, err := client.PaymentsDetail(context.Background(), "tok", "55")
	require.NoError(t, err)
	require.Len(t, page.Results, 1)
	tenant := page.Results[0].Client
	require.NotNil(t, tenant)
	assert.Equal(t, int64(7), tenant.ID)
	require.NotNil(t, tenant.Contact)
	assert.Equal(t, "Иван Иванов", tenant.Contact.Name)
	require.Len(t, tenant.Contact.Emails, 1)
	assert.Equal(t, "user@mail.com", tenant.Contact.Emails[0].Email)
}

func TestSubmitMeterValue(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/clients/meters/9/values", r.URL.Path)
		assert.Equal(t, "true", r.URL.Query().Get("withOptionalCheck"))
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "123.45", body["value1"])
		w.WriteHeader(http.StatusOK)
	})

	err := client.SubmitMeterValue(context.Background(), "tok", 9, "123.45")
	require.NoError(t, err)
}

func TestReceiptPDFReturnsBytes(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/personal_account/receipts_by_period/55", r.URL.Path)
		assert.Equal(t, "2024-03-01", r.URL.Query().Get("date"))
		assert.Equal(t, "UTILITIES", r.URL.Query().Get("serviceType"))
		_, _ = w.Write([]byte("%PDF-1.4 fake"))
	})

	data, err := client.ReceiptPDF(context.Background(), "tok", "55", "2024-03-01")
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4 fake", string(data))
}

func TestStatusErrorPreservesBody(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte("no receipt for period"))
	})

	_, err := client.ReceiptPDF(context.Background(), "tok", "55", "2024-03-01")
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, StatusOf(err))
	assert.Equal(t, "no receipt for period", BodyOf(err))
	assert.False(t, IsUnauthorized(err))
}

func TestIsUnauthorized(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	_, err := client.ConfigurationItems(context.Background(), "expired")
	require.Error(t, err)
	assert.True(t, IsUnauthorized(err))
}
