package handler

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	excelize "github.com/xuri/excelize/v2"

	"catalog-matcher/internal/config"
	"catalog-matcher/internal/reconcile/model"
	recSvc "catalog-matcher/internal/reconcile/service"
)

const inventoryCSV = "Item ID;Item (SKU Owleys);ITEM NAME;BOX Picture\n" +
	"p-3014-10;P3014-10;Hanging Foldable Trunk Organizer;\n" +
	"p-3014-30;;Hexy Seat Cover;old.jpg\n"

func newMatcher() *recSvc.Matcher {
	return recSvc.NewMatcher(recSvc.DefaultVocabulary())
}

func postJSON(t *testing.T, h http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestMatch(t *testing.T) {
	h := Match(newMatcher(), zerolog.Nop())

	rec := postJSON(t, h, `{
		"query": "OUTR01-01A",
		"catalog": [
			{"identifier": "p-3014-10", "displayName": "Hanging Foldable Trunk Organizer"},
			{"identifier": "p-3014-20", "secondaryCode": "OUTR01-01A (black)", "displayName": "Quick Kennel Travel Carrier"}
		]
	}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var res model.MatchResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.True(t, res.Matched)
	assert.Equal(t, 1, res.Index)
	assert.Equal(t, "p-3014-20", res.Record.Identifier)
	assert.Equal(t, model.TierCode, res.Tier)
	assert.InDelta(t, 0.95, res.Score, 1e-9)
}

func TestMatchNoResult(t *testing.T) {
	h := Match(newMatcher(), zerolog.Nop())

	rec := postJSON(t, h, `{"query": "random-unrelated-text", "mode": "name", "catalog": []}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var res model.MatchResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, model.NoMatch(), res)
}

func TestMatchBadRequest(t *testing.T) {
	h := Match(newMatcher(), zerolog.Nop())

	assert.Equal(t, http.StatusBadRequest, postJSON(t, h, `{"query":`).Code)
	assert.Equal(t, http.StatusBadRequest, postJSON(t, h, `{"query": "x", "unknown": 1}`).Code)
	assert.Equal(t, http.StatusBadRequest, postJSON(t, h, `{"query": "x", "mode": "fuzzy"}`).Code)
}

func TestCorrectTitles(t *testing.T) {
	h := CorrectTitles(newMatcher(), zerolog.Nop())

	rec := postJSON(t, h, `{
		"inventory": [{"identifier": "p-3014-10", "displayName": "Hanging Foldable Trunk Organizer"}],
		"titles": ["P3014-10", "Lumbar Pillow Deluxe"]
	}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp titlesResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Corrections, 2)
	assert.Equal(t, 1, resp.Corrected)
	assert.Equal(t, "Hanging Foldable Trunk Organizer", resp.Corrections[0].Corrected)
	assert.True(t, resp.Corrections[0].Malformed)
	assert.Equal(t, "Lumbar Pillow Deluxe", resp.Corrections[1].Corrected)
}

func TestCorrectTitlesEmptyInventory(t *testing.T) {
	h := CorrectTitles(newMatcher(), zerolog.Nop())

	rec := postJSON(t, h, `{"inventory": [], "titles": ["x"]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func assignRequest(t *testing.T, fields map[string]string, withCatalog bool) *http.Request {
	t.Helper()
	if !withCatalog {
		return uploadRequest(t, "", nil, fields)
	}
	return uploadRequest(t, "inventory.csv", []byte(inventoryCSV), fields)
}

// uploadRequest: multipart на /images/assign; пустое filename: без файла каталога.
func uploadRequest(t *testing.T, filename string, data []byte, fields map[string]string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if filename != "" {
		fw, err := mw.CreateFormFile("catalog", filename)
		require.NoError(t, err)
		_, err = fw.Write(data)
		require.NoError(t, err)
	}
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/images/assign", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestAssignImagesJSON(t *testing.T) {
	h := AssignImages(config.Config{MaxUploadMB: 1, Workers: 2}, newMatcher(), zerolog.Nop())

	req := assignRequest(t, map[string]string{
		"image": "p-3014-10.jpg\nhexy-seat-cover.jpg\nnotes.txt\n",
	}, true)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp assignResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.RunID)
	require.Len(t, resp.Assignments, 2, "non-image names are ignored")
	assert.Equal(t, model.StatusAssigned, resp.Assignments[0].Status)
	assert.Equal(t, model.StatusKept, resp.Assignments[1].Status)
	assert.Equal(t, 1, resp.Updated)
	require.Len(t, resp.Records, 2)
	assert.Equal(t, "p-3014-10.jpg", resp.Records[0].AssignedResource)
	assert.Equal(t, "old.jpg", resp.Records[1].AssignedResource)
}

func TestAssignImagesFile(t *testing.T) {
	h := AssignImages(config.Config{MaxUploadMB: 1, Workers: 1}, newMatcher(), zerolog.Nop())

	req := assignRequest(t, map[string]string{
		"image":    "p-3014-10.jpg\nhexy-seat-cover.jpg",
		"reassign": "true",
		"format":   "file",
	}, true)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	assert.Equal(t, `attachment; filename="inventory.csv"`, rec.Header().Get("Content-Disposition"))
	body := rec.Body.String()
	assert.Contains(t, body, "p-3014-10;P3014-10;Hanging Foldable Trunk Organizer;p-3014-10.jpg\n")
	assert.Contains(t, body, "p-3014-30;;Hexy Seat Cover;hexy-seat-cover.jpg\n")
}

func TestAssignImagesBadRequest(t *testing.T) {
	h := AssignImages(config.Config{MaxUploadMB: 1, Workers: 1}, newMatcher(), zerolog.Nop())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, assignRequest(t, map[string]string{"image": "a.jpg"}, false))
	assert.Equal(t, http.StatusBadRequest, rec.Code, "missing catalog")

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, assignRequest(t, map[string]string{"image": "notes.txt"}, true))
	assert.Equal(t, http.StatusBadRequest, rec.Code, "no images")

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, assignRequest(t, map[string]string{"image": "a.jpg", "id_col": "Missing Column"}, true))
	assert.Equal(t, http.StatusBadRequest, rec.Code, "unknown id column")
}

func TestParseMode(t *testing.T) {
	m, err := parseMode("")
	require.NoError(t, err)
	assert.Equal(t, model.IdentifierFirst, m)

	m, err = parseMode(" Name ")
	require.NoError(t, err)
	assert.Equal(t, model.NameOnly, m)

	_, err = parseMode("fuzzy")
	assert.Error(t, err)
}

func TestOutputName(t *testing.T) {
	assert.Equal(t, "inv.xlsx", outputName("inv.XLS"))
	assert.Equal(t, "inv.csv", outputName("inv.csv"))
}

func TestMappingFromFormHeaderRow(t *testing.T) {
	for raw, want := range map[string]int{"": 1, "0": 1, "-3": 1, "x": 1, "2": 2} {
		form := url.Values{"header_row": {raw}}
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

		assert.Equal(t, want, mappingFromForm(req).HeaderRow, "header_row=%q", raw)
	}
}

func TestAssignImagesHeaderRowZero(t *testing.T) {
	h := AssignImages(config.Config{MaxUploadMB: 1, Workers: 1}, newMatcher(), zerolog.Nop())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, assignRequest(t, map[string]string{"image": "p-3014-10.jpg", "header_row": "0"}, true))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp assignResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Records, 2)
	assert.Equal(t, "p-3014-10.jpg", resp.Records[0].AssignedResource)
}

func TestAssignImagesFileKeepsWorkbook(t *testing.T) {
	src := excelize.NewFile()
	require.NoError(t, src.SetCellStr("Sheet1", "A1", "Inventory export"))
	require.NoError(t, src.SetSheetRow("Sheet1", "A2", &[]any{"Item ID", "ITEM NAME", "Qty"}))
	require.NoError(t, src.SetSheetRow("Sheet1", "A3", &[]any{"p-3014-10", "Hanging Foldable Trunk Organizer", 3}))
	_, err := src.NewSheet("Notes")
	require.NoError(t, err)
	require.NoError(t, src.SetCellStr("Notes", "A1", "keep me"))
	var data bytes.Buffer
	require.NoError(t, src.Write(&data))
	require.NoError(t, src.Close())

	h := AssignImages(config.Config{MaxUploadMB: 1, Workers: 1}, newMatcher(), zerolog.Nop())
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, uploadRequest(t, "inventory.xlsx", data.Bytes(), map[string]string{
		"image":      "p-3014-10.jpg",
		"header_row": "2",
		"format":     "file",
	}))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	out, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	defer out.Close()

	assertCell(t, out, "Sheet1", "A1", "Inventory export")
	assertCell(t, out, "Sheet1", "D2", "BOX Picture")
	assertCell(t, out, "Sheet1", "D3", "p-3014-10.jpg")
	assertCell(t, out, "Notes", "A1", "keep me")
}

func assertCell(t *testing.T, f *excelize.File, sheet, cell, want string) {
	t.Helper()
	got, err := f.GetCellValue(sheet, cell)
	require.NoError(t, err)
	assert.Equal(t, want, got, "%s!%s", sheet, cell)
}
