// Package homework holds the review API contract: response validation,
// the verdict table and the status message format.
package homework

import (
	"encoding/json"
	"fmt"
	"math"
)

// Statuses reported by the review API.
const (
	StatusApproved  = "approved"
	StatusReviewing = "reviewing"
	StatusRejected  = "rejected"
)

// Verdicts maps each known status to the sentence sent to the chat.
var Verdicts = map[string]string{
	StatusApproved:  "Работа проверена: ревьюеру всё понравилось. Ура!",
	StatusReviewing: "Работа взята на проверку ревьюером.",
	StatusRejected:  "Работа проверена: у ревьюера есть замечания.",
}

const (
	keyHomeworks   = "homeworks"
	keyCurrentDate = "current_date"
	keyName        = "homework_name"
	keyStatus      = "status"
)

// Response is a validated API answer.
type Response struct {
	// Homeworks is the list as received, most recent first. Elements are not validated.
	Homeworks []any
	// CurrentDate is the server time, used as the next from_date.
	CurrentDate int64
}

// CheckResponse validates the decoded API answer and returns its homework list
// together with the server's current_date. An empty list is valid.
func CheckResponse(raw any) (Response, error) {
	obj, ok := raw.(map[string]any)
	if !ok {
		return Response{}, &SchemaError{Reason: fmt.Sprintf("expected a JSON object, got %s", jsonKind(raw))}
	}

	hwRaw, ok := obj[keyHomeworks]
	if !ok {
		return Response{}, &SchemaError{Field: keyHomeworks, Reason: "is missing"}
	}
	dateRaw, ok := obj[keyCurrentDate]
	if !ok {
		return Response{}, &SchemaError{Field: keyCurrentDate, Reason: "is missing"}
	}

	homeworks, ok := hwRaw.([]any)
	if !ok {
		return Response{}, &SchemaError{Field: keyHomeworks, Reason: fmt.Sprintf("must be a list, got %s", jsonKind(hwRaw))}
	}

	currentDate, err := toUnix(dateRaw)
	if err != nil {
		return Response{}, &SchemaError{Field: keyCurrentDate, Reason: err.Error()}
	}

	return Response{Homeworks: homeworks, CurrentDate: currentDate}, nil
}

// ParseStatus builds the chat message for a single homework record.
func ParseStatus(record any) (string, error) {
	obj, ok := record.(map[string]any)
	if !ok {
		return "", &SchemaError{Field: keyHomeworks, Reason: fmt.Sprintf("must contain objects, got %s", jsonKind(record))}
	}

	name, err := stringField(obj, keyName)
	if err != nil {
		return "", err
	}
	status, err := stringField(obj, keyStatus)
	if err != nil {
		return "", err
	}

	verdict, ok := Verdicts[status]
	if !ok {
		return "", &UnknownStatusError{Homework: name, Status: status}
	}

	return fmt.Sprintf("Изменился статус проверки работы \"%s\". %s", name, verdict), nil
}

func stringField(obj map[string]any, key string) (string, error) {
	v, ok := obj[key]
	if !ok {
		return "", &SchemaError{Field: key, Reason: "is missing"}
	}
	s, ok := v.(string)
	if !ok {
		return "", &SchemaError{Field: key, Reason: fmt.Sprintf("must be a string, got %s", jsonKind(v))}
	}
	return s, nil
}

func toUnix(v any) (int64, error) {
	switch n := v.(type) {
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return 0, fmt.Errorf("must be an integer, got %s", n.String())
		}
		return i, nil
	case float64:
		if n != math.Trunc(n) || math.IsInf(n, 0) {
			return 0, fmt.Errorf("must be an integer, got %v", n)
		}
		return int64(n), nil
	case int64:
		return n, nil
	case int:
		return int64(n), nil
	default:
		return 0, fmt.Errorf("must be an integer, got %s", jsonKind(v))
	}
}

func jsonKind(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case map[string]any:
		return "object"
	case []any:
		return "list"
	case string:
		return "string"
	case bool:
		return "bool"
	case json.Number, float64, int, int64:
		return "number"
	default:
		return fmt.Sprintf("%T", v)
	}
}
