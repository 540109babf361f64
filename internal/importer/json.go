package importer

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/piwi3910/sheetnest/internal/engine"
	"github.com/piwi3910/sheetnest/internal/model"
)

// DecodeParts reads a JSON array of part specs. Records with the wrong shape
// (a string width, an unknown grain, a non-string material) are collected
// into a single *engine.ValidationError that names each offending record.
func DecodeParts(r io.Reader) ([]model.PartSpec, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading parts: %w", err)
	}
	return decodeParts(data)
}

func decodeParts(data json.RawMessage) ([]model.PartSpec, error) {
	if isNull(data) {
		return nil, nil
	}
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, engine.NewValidationError("parts", "must be an array of part objects")
	}

	specs := make([]model.PartSpec, len(raw))
	var issues []engine.Issue
	for i, rec := range raw {
		if err := json.Unmarshal(rec, &specs[i]); err != nil {
			issues = append(issues, engine.Issue{Index: i, Name: recordName(rec), Reasons: []string{describeJSONError(err)}})
		}
	}
	if len(issues) > 0 {
		return nil, &engine.ValidationError{Issues: issues}
	}
	return specs, nil
}

// DecodeSheetSizes reads a JSON object mapping material to {width, height}.
func DecodeSheetSizes(r io.Reader) (model.SheetSizeConfig, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading sheet sizes: %w", err)
	}
	return decodeSheetSizes(data)
}

func decodeSheetSizes(data json.RawMessage) (model.SheetSizeConfig, error) {
	sizes := model.SheetSizeConfig{}
	if isNull(data) {
		return sizes, nil
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, engine.NewValidationError("sheet_sizes", "must be an object mapping material to {width, height}")
	}

	var bad []string
	for mat, rec := range raw {
		var s model.SheetSize
		if err := json.Unmarshal(rec, &s); err != nil {
			bad = append(bad, fmt.Sprintf("%s: %s", mat, describeJSONError(err)))
			continue
		}
		sizes[mat] = s
	}
	if len(bad) > 0 {
		sort.Strings(bad)
		return nil, engine.NewValidationError("sheet_sizes", bad...)
	}
	if err := engine.ValidateSheetSizes(sizes); err != nil {
		return nil, err
	}
	return sizes, nil
}

// NestRequest is the JSON body accepted by the nesting entry points.
type NestRequest struct {
	Parts      []model.PartSpec
	SheetSizes model.SheetSizeConfig
	Settings   model.NestSettings
}

// DecodeNestRequest reads {"parts": [...], "sheet_sizes": {...}, "settings": {...}}.
// Fields present under "settings" override base; absent ones keep base values.
func DecodeNestRequest(r io.Reader, base model.NestSettings) (NestRequest, error) {
	var envelope struct {
		Parts      json.RawMessage `json:"parts"`
		SheetSizes json.RawMessage `json:"sheet_sizes"`
		Settings   json.RawMessage `json:"settings"`
	}
	dec := json.NewDecoder(r)
	if err := dec.Decode(&envelope); err != nil {
		return NestRequest{}, engine.NewValidationError("body", describeJSONError(err))
	}

	parts, err := decodeParts(envelope.Parts)
	if err != nil {
		return NestRequest{}, err
	}
	sizes, err := decodeSheetSizes(envelope.SheetSizes)
	if err != nil {
		return NestRequest{}, err
	}
	settings := base
	if !isNull(envelope.Settings) {
		if err := json.Unmarshal(envelope.Settings, &settings); err != nil {
			return NestRequest{}, engine.NewValidationError("settings", describeJSONError(err))
		}
	}
	return NestRequest{Parts: parts, SheetSizes: sizes, Settings: settings}, nil
}

func isNull(data json.RawMessage) bool {
	trimmed := bytes.TrimSpace(data)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

func recordName(rec json.RawMessage) string {
	var named struct {
		Name any `json:"name"`
	}
	if json.Unmarshal(rec, &named) != nil || named.Name == nil {
		return ""
	}
	return fmt.Sprint(named.Name)
}

func describeJSONError(err error) string {
	switch e := err.(type) {
	case *json.UnmarshalTypeError:
		if e.Field != "" {
			return fmt.Sprintf("%s must be a %s, got %s", e.Field, e.Type, e.Value)
		}
		return fmt.Sprintf("expected %s, got %s", e.Type, e.Value)
	case *json.SyntaxError:
		return fmt.Sprintf("malformed JSON at offset %d: %v", e.Offset, e)
	default:
		return err.Error()
	}
}
