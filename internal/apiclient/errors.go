package apiclient

import (
    "bytes"
    "encoding/json"
    "errors"
    "fmt"
    "net/http"
    "strings"
)

// ErrorKind tags a RequestError with the class of failure.
type ErrorKind int

const (
    KindOther ErrorKind = iota
    KindConnectivity
    KindValidation
    KindCapacity
    KindUnauthorized
    KindForbidden
    KindNotFound
    KindServer
)

func (k ErrorKind) String() string {
    switch k {
    case KindConnectivity:
        return "connectivity"
    case KindValidation:
        return "validation"
    case KindCapacity:
        return "capacity"
    case KindUnauthorized:
        return "unauthorized"
    case KindForbidden:
        return "forbidden"
    case KindNotFound:
        return "not_found"
    case KindServer:
        return "server"
    }
    return "other"
}

// User-facing messages.  The backend speaks Russian, so do we.
const (
    MsgSignInRequired = "Для продолжения нужно войти в личный кабинет"
    MsgAccessDenied   = "Доступ запрещён"
    MsgNotFound       = "Запрошенные данные не найдены"
    MsgServer         = "Ошибка сервера. Попробуйте позже"
    MsgNoSeats        = "На выбранную дату и время нет свободных мест"
    msgRequestFailed  = "Ошибка запроса"
    msgBadResponse    = "Сервер вернул некорректный ответ"
)

// FieldError is one entry of a structured validation error list.
type FieldError struct {
    Field   string `json:"field"`
    Message string `json:"message"`
}

// RequestError is the only error shape that leaves the gateway for a
// failed call.  Message is always safe to show; Err keeps the underlying
// cause for logs.
type RequestError struct {
    Kind    ErrorKind
    Status  int // HTTP status; 0 when no response was received
    Message string
    Fields  []FieldError
    Err     error
}

func (e *RequestError) Error() string { return e.Message }

func (e *RequestError) Unwrap() error { return e.Err }

// KindOf returns the kind of err, or KindOther for errors that did not come
// from the gateway.
func KindOf(err error) ErrorKind {
    var re *RequestError
    if errors.As(err, &re) {
        return re.Kind
    }
    return KindOther
}

// StatusOf returns the HTTP status attached to err, or 0.
func StatusOf(err error) int {
    var re *RequestError
    if errors.As(err, &re) {
        return re.Status
    }
    return 0
}

// IsConnectivity reports whether err is a transport-level failure.
func IsConnectivity(err error) bool { return KindOf(err) == KindConnectivity }

// IsCapacity reports whether err is a "no seats left" rejection.
func IsCapacity(err error) bool { return KindOf(err) == KindCapacity }

func connectivityError(baseURL string, cause error) *RequestError {
    return &RequestError{
        Kind:    KindConnectivity,
        Message: fmt.Sprintf("Не удалось подключиться к серверу (%s). Убедитесь, что бэкенд запущен и доступен.", baseURL),
        Err:     cause,
    }
}

// capacityPhrases are fragments the backend uses when a slot has no room.
var capacityPhrases = []string{
    "нет свободных мест",
    "недостаточно мест",
    "no seats",
    "not enough seats",
    "not enough places",
}

func mentionsCapacity(msg string) bool {
    lower := strings.ToLower(msg)
    for _, p := range capacityPhrases {
        if strings.Contains(lower, p) {
            return true
        }
    }
    return false
}

// decodeError normalises a non-2xx response into a RequestError.  Message
// precedence: validation list, string detail, object detail, top-level
// message, raw text, fallback literal.  The result is then translated.
func decodeError(status int, raw []byte) *RequestError {
    re := &RequestError{Status: status, Kind: kindForStatus(status)}

    var body map[string]json.RawMessage
    if err := json.Unmarshal(raw, &body); err == nil {
        if detail, ok := body["detail"]; ok {
            re.Message, re.Fields = decodeDetail(detail)
        }
        if re.Message == "" {
            if m, ok := body["message"]; ok {
                _ = json.Unmarshal(m, &re.Message)
            }
        }
        if re.Message == "" && len(body) > 0 {
            re.Message = strings.TrimSpace(string(raw))
        }
    } else if text := strings.TrimSpace(string(raw)); usableRawText(status, text) {
        re.Message = text
    }
    if len(re.Fields) > 0 {
        re.Kind = KindValidation
    }
    if re.Message == "" {
        re.Message = fallbackMessage(status)
    }
    if mentionsCapacity(re.Message) && (status == http.StatusBadRequest || status == http.StatusConflict) {
        re.Kind = KindCapacity
    }
    re.Message = Translate(re.Message)
    re.Err = fmt.Errorf("backend responded %d", status)
    return re
}

func decodeDetail(detail json.RawMessage) (string, []FieldError) {
    trimmed := bytes.TrimSpace(detail)
    if len(trimmed) == 0 {
        return "", nil
    }
    switch trimmed[0] {
    case '[':
        var items []json.RawMessage
        if err := json.Unmarshal(trimmed, &items); err != nil {
            return "", nil
        }
        fields := make([]FieldError, 0, len(items))
        lines := make([]string, 0, len(items))
        for _, it := range items {
            var v struct {
                Loc []any  `json:"loc"`
                Msg string `json:"msg"`
            }
            _ = json.Unmarshal(it, &v)
            msg := v.Msg
            if msg == "" {
                msg = string(it)
            }
            lines = append(lines, msg)
            fields = append(fields, FieldError{Field: fieldName(v.Loc), Message: msg})
        }
        return strings.Join(lines, "\n"), fields
    case '"':
        var s string
        _ = json.Unmarshal(trimmed, &s)
        return s, nil
    case '{':
        var obj map[string]any
        if err := json.Unmarshal(trimmed, &obj); err != nil {
            return "", nil
        }
        for _, k := range []string{"message", "msg", "reason", "code"} {
            if s, ok := obj[k].(string); ok && s != "" {
                return s, nil
            }
        }
        return string(trimmed), nil
    }
    return "", nil
}

// fieldName picks the last path element of a pydantic "loc" array, skipping
// the "body"/"query" prefix.
func fieldName(loc []any) string {
    for i := len(loc) - 1; i >= 0; i-- {
        if s, ok := loc[i].(string); ok && s != "body" && s != "query" && s != "path" {
            return s
        }
    }
    return ""
}

// usableRawText keeps plain-text bodies but never leaks HTML error pages or
// server stack traces.
func usableRawText(status int, text string) bool {
    if text == "" || status >= 500 {
        return false
    }
    return !strings.HasPrefix(text, "<") && len(text) <= 300
}

func kindForStatus(status int) ErrorKind {
    switch {
    case status == http.StatusUnauthorized:
        return KindUnauthorized
    case status == http.StatusForbidden:
        return KindForbidden
    case status == http.StatusNotFound:
        return KindNotFound
    case status == http.StatusUnprocessableEntity:
        return KindValidation
    case status >= 500:
        return KindServer
    }
    return KindOther
}

func fallbackMessage(status int) string {
    switch kindForStatus(status) {
    case KindUnauthorized:
        return MsgSignInRequired
    case KindForbidden:
        return MsgAccessDenied
    case KindNotFound:
        return MsgNotFound
    case KindServer:
        return MsgServer
    }
    return msgRequestFailed
}
