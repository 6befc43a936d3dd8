package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sunward.gg/internal/model"
)

// TestWireShapesMatchSchemas pins the JSON the server actually produces and
// accepts to the published schemas under schemas/.
func TestWireShapesMatchSchemas(t *testing.T) {
	compile := func(name string) *jsonschema.Schema {
		t.Helper()
		c := jsonschema.NewCompiler()
		c.AssertFormat = true
		s, err := c.Compile(filepath.Join("..", "..", "schemas", name))
		require.NoError(t, err, "compile %s", name)
		return s
	}

	// Validate wants the document as decoded JSON, not Go structs
	decode := func(raw []byte) any {
		t.Helper()
		var v any
		require.NoError(t, json.Unmarshal(raw, &v))
		return v
	}
	roundTrip := func(doc any) any {
		t.Helper()
		raw, err := json.Marshal(doc)
		require.NoError(t, err)
		return decode(raw)
	}

	connectReqSchema := compile("connect-request.schema.json")
	buildReqSchema := compile("build-request.schema.json")
	repairReqSchema := compile("repair-request.schema.json")
	structureSchema := compile("structure.schema.json")
	listSchema := compile("structure-list.schema.json")
	errorSchema := compile("error.schema.json")
	recordsSchema := compile("owner-records.schema.json")
	eventSchema := compile("event.schema.json")

	// Request bodies as clients send them
	assert.NoError(t, connectReqSchema.Validate(decode([]byte(`{"displayName":"alice"}`))))
	assert.Error(t, connectReqSchema.Validate(decode([]byte(`{"displayName":"x"}`))))

	assert.NoError(t, buildReqSchema.Validate(roundTrip(map[string]any{
		"structureType": "wall",
		"transform":     identityTransform(10, 0, 10),
	})))
	assert.Error(t, buildReqSchema.Validate(decode([]byte(`{"structureType":"wall","transform":[1,2,3]}`))))

	assert.NoError(t, repairReqSchema.Validate(decode([]byte(`{"structureId":"alice-1"}`))))

	// Response bodies as the server produces them
	ts := newTestServer(t)
	conn := ts.connect(t, "alice")
	built := ts.build(t, conn.SessionToken, "wall", 10, 10)

	assert.NoError(t, structureSchema.Validate(roundTrip(built)))

	rr := ts.request(http.MethodGet, "/api/v1/structures", nil, conn.SessionToken)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.NoError(t, listSchema.Validate(decode(rr.Body.Bytes())))

	rr = ts.request(http.MethodPost, "/api/v1/structures/build", map[string]any{
		"structureType": "tent",
		"transform":     identityTransform(0, 0, 0),
	}, conn.SessionToken)
	require.Equal(t, http.StatusBadRequest, rr.Code)
	assert.NoError(t, errorSchema.Validate(decode(rr.Body.Bytes())))

	// Persisted owner document written on disconnect
	rr = ts.request(http.MethodPost, "/api/v1/session/disconnect", nil, conn.SessionToken)
	require.Equal(t, http.StatusOK, rr.Code)

	records, err := ts.app.Storage.LoadStructures(context.Background(), "alice")
	require.NoError(t, err)
	require.NotEmpty(t, records)
	assert.NoError(t, recordsSchema.Validate(roundTrip(records)))

	// Event stream payload
	assert.NoError(t, eventSchema.Validate(roundTrip(model.Event{
		Type:          model.EventStructureCritical,
		Timestamp:     time.Now().UTC(),
		Owner:         "alice",
		StructureID:   model.StructureID(built.ID),
		StructureType: "wall",
		Health:        18,
	})))
}
