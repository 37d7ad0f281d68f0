// Package callable implements the HTTPS callable-function wire protocol
// spoken by the Firebase client SDKs: requests arrive as POST bodies of the
// form {"data": <arg>}, successes return {"result": <value>} and failures
// return {"error": {"status": <CODE>, "message": <text>}} with the status
// code's canonical HTTP mapping.
package callable

import (
	"encoding/json"
	"net/http"

	"github.com/howsu-app/howsu-backend/internal/log"
)

type requestEnvelope struct {
	Data json.RawMessage `json:"data"`
}

type resultEnvelope struct {
	Result any `json:"result"`
}

type errorEnvelope struct {
	Error *Error `json:"error"`
}

// DecodeRequest unpacks the {"data": ...} envelope into v. A missing or
// malformed envelope is the caller's fault and reported as INVALID_ARGUMENT.
func DecodeRequest(r *http.Request, v any) error {
	if r.Method != http.MethodPost {
		return NewError(CodeInvalidArgument, "callable functions must be invoked with POST")
	}

	var env requestEnvelope
	if err := json.NewDecoder(r.Body).Decode(&env); err != nil {
		return NewError(CodeInvalidArgument, "request body is not a valid callable envelope")
	}
	if len(env.Data) == 0 {
		// An absent data field decodes target fields to their zero values,
		// same as the client sending null.
		return nil
	}
	if err := json.Unmarshal(env.Data, v); err != nil {
		return NewError(CodeInvalidArgument, "request data has the wrong shape")
	}
	return nil
}

// WriteResult writes the success envelope.
func WriteResult(w http.ResponseWriter, result any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(resultEnvelope{Result: result}); err != nil {
		log.LogError("Failed to encode callable result: %v", err)
	}
}

// WriteError writes the error envelope with the code's HTTP status.
func WriteError(w http.ResponseWriter, err error) {
	ce := AsError(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(ce.Code.HTTPStatus())
	if encErr := json.NewEncoder(w).Encode(errorEnvelope{Error: ce}); encErr != nil {
		log.LogError("Failed to encode callable error: %v", encErr)
	}
}
