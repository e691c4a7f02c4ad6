package response

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/noah-isme/wellness-client/pkg/errors"
)

type student struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func TestDecodeSuccessEnvelope(t *testing.T) {
	var out student
	err := Decode(http.StatusOK, []byte(`{"status":"success","data":{"id":"s-1","name":"Alice"}}`), &out)
	require.NoError(t, err)
	assert.Equal(t, student{ID: "s-1", Name: "Alice"}, out)
}

func TestDecodeBareBody(t *testing.T) {
	var out []student
	err := Decode(http.StatusOK, []byte(`[{"id":"1","name":"Bob"}]`), &out)
	require.NoError(t, err)
	assert.Len(t, out, 1)
}

type caseRecord struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Title  string `json:"title"`
}

func TestDecodeBareRecordWithStatus(t *testing.T) {
	cases := []struct {
		name string
		body string
		want caseRecord
	}{
		{"open case", `{"id":"c1","status":"open"}`, caseRecord{ID: "c1", Status: "open"}},
		{"unknown status word", `{"id":"c2","status":"pending","title":"Follow up"}`, caseRecord{ID: "c2", Status: "pending", Title: "Follow up"}},
		{"envelope word without envelope keys", `{"id":"c3","status":"success","title":"Done"}`, caseRecord{ID: "c3", Status: "success", Title: "Done"}},
		{"wrapped record", `{"status":"success","data":{"id":"c4","status":"closed"}}`, caseRecord{ID: "c4", Status: "closed"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var out caseRecord
			require.NoError(t, Decode(http.StatusOK, []byte(tc.body), &out))
			assert.Equal(t, tc.want, out)
		})
	}
}

func TestDecodeStatusOnlyEnvelope(t *testing.T) {
	out := caseRecord{ID: "keep"}
	require.NoError(t, Decode(http.StatusOK, []byte(`{"status":"success"}`), &out))
	assert.Equal(t, "keep", out.ID)

	err := Decode(http.StatusOK, []byte(`{"status":"error"}`), nil)
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
}

func TestDecodeEmptyAndNull(t *testing.T) {
	out := student{ID: "keep"}
	require.NoError(t, Decode(http.StatusNoContent, nil, &out))
	require.NoError(t, Decode(http.StatusOK, []byte(`{"status":"success","data":null}`), &out))
	assert.Equal(t, "keep", out.ID)
	require.NoError(t, Decode(http.StatusOK, []byte(`{"status":"success","data":{"id":"x"}}`), nil))
}

func TestDecodeErrorStatusCarriesMessage(t *testing.T) {
	err := Decode(http.StatusBadRequest, []byte(`{"status":"error","message":"student already has an open case"}`), nil)
	require.Error(t, err)

	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "student already has an open case", appErr.Message)
	assert.Equal(t, http.StatusBadRequest, appErr.Status)
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
}

func TestDecodeErrorShapes(t *testing.T) {
	cases := []struct {
		name string
		body string
		want string
	}{
		{"error string", `{"error":"email taken"}`, "email taken"},
		{"error object", `{"error":{"code":"X","message":"booking slot unavailable"}}`, "booking slot unavailable"},
		{"errors list", `{"errors":[{"message":"name required"},"date invalid"]}`, "name required; date invalid"},
		{"not json", `<html>bad gateway</html>`, appErrors.ErrInternal.Message},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status := http.StatusConflict
			if tc.name == "not json" {
				status = http.StatusBadGateway
			}
			err := Decode(status, []byte(tc.body), nil)
			assert.Equal(t, tc.want, appErrors.Message(err))
		})
	}
}

func TestDecodeUnauthorized(t *testing.T) {
	err := Decode(http.StatusUnauthorized, []byte(`{"message":"token expired"}`), nil)
	assert.True(t, errors.Is(err, appErrors.ErrUnauthorized))
	assert.Equal(t, "token expired", appErrors.Message(err))
}

func TestDecodeFailEnvelopeUnder2xx(t *testing.T) {
	err := Decode(http.StatusOK, []byte(`{"status":"fail","message":"assessment closed"}`), nil)
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
	assert.Equal(t, "assessment closed", appErrors.Message(err))
}

func TestDecodeMalformed(t *testing.T) {
	var out student
	err := Decode(http.StatusOK, []byte(`{"status":"success","data":{"id":1`), &out)
	assert.True(t, errors.Is(err, appErrors.ErrInvalidEnvelope))

	err = Decode(http.StatusOK, []byte(`{"status":"success","data":{"id":7}}`), &out)
	assert.True(t, errors.Is(err, appErrors.ErrInvalidEnvelope))
}
