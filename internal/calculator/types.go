package calculator

// Key names accepted by POST /calculator/sessions/{sessionID}/keys.
const (
	KeyDigit    = "digit"
	KeyOperator = "operator"
	KeyDecimal  = "decimal"
	KeyDelete   = "delete"
	KeyClear    = "clear"
	KeyEquals   = "equals"
)

// KeyRequest is the JSON body for a key press.
type KeyRequest struct {
	Key      string `json:"key"`                // one of the Key* constants
	Digit    string `json:"digit,omitempty"`    // single character "0".."9"; digit key only
	Operator string `json:"operator,omitempty"` // "+", "-", "*" or "/"; operator key only
}

// StateView is the JSON rendering of a machine's state.
type StateView struct {
	FirstNumber  string `json:"first_number"`
	SecondNumber string `json:"second_number"`
	Operation    string `json:"operation,omitempty"`
}

// DisplayView is the two-line screen rendering: the committed expression
// (first operand plus pending operator) above the entry in progress.
type DisplayView struct {
	Expression string `json:"expression"`
	Entry      string `json:"entry"`
}

// SessionResponse is the JSON response for every session endpoint.
type SessionResponse struct {
	SessionID string      `json:"session_id"`
	State     StateView   `json:"state"`
	Display   DisplayView `json:"display"`
	RequestID string      `json:"request_id"`
}

func viewOf(sessionID, requestID string, s State) SessionResponse {
	expression, entry := s.Display()
	return SessionResponse{
		SessionID: sessionID,
		State: StateView{
			FirstNumber:  s.FirstNumber,
			SecondNumber: s.SecondNumber,
			Operation:    string(s.Operation),
		},
		Display:   DisplayView{Expression: expression, Entry: entry},
		RequestID: requestID,
	}
}
