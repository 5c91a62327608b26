package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/jjudge-oj/contacts/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExportLifecycle(t *testing.T) {
	api := newTestAPI(t)
	token := api.login("alice")
	api.createContact(token, map[string]any{"name": "Carol"})

	res := api.do(http.MethodPost, "/contacts/exports", token, nil)
	require.Equal(t, http.StatusCreated, res.Code, "%s", res.Body)
	var created struct {
		Data types.Export `json:"data"`
	}
	res.decode(t, &created)
	assert.Equal(t, 1, created.Data.Contacts)
	path := "/contacts/exports/" + created.Data.ID

	res = api.do(http.MethodGet, path, token, nil)
	require.Equal(t, http.StatusOK, res.Code)
	var doc types.ExportDocument
	require.NoError(t, json.Unmarshal(res.Body, &doc))
	require.Len(t, doc.Contacts, 1)
	assert.Equal(t, "Carol", doc.Contacts[0].Name)

	bob := api.login("bob")
	res = api.do(http.MethodGet, path, bob, nil)
	assert.Equal(t, http.StatusNotFound, res.Code)

	res = api.do(http.MethodDelete, path, token, nil)
	require.Equal(t, http.StatusOK, res.Code)
	res = api.do(http.MethodGet, path, token, nil)
	assert.Equal(t, http.StatusNotFound, res.Code)
}

func TestExportsDisabled(t *testing.T) {
	api := buildTestAPI(t, nil)
	token := api.login("alice")

	res := api.do(http.MethodPost, "/contacts/exports", token, nil)
	assert.Equal(t, http.StatusServiceUnavailable, res.Code)
}
