package apiclient

import (
    "strings"
    "unicode"
)

// translations maps machine codes and stock English phrases emitted by the
// backend's auth and validation layers to user-facing text.
var translations = map[string]string{
    "LOGIN_BAD_CREDENTIALS":            "Неверный email или пароль",
    "LOGIN_USER_NOT_VERIFIED":          "Email ещё не подтверждён",
    "REGISTER_USER_ALREADY_EXISTS":     "Пользователь с таким email уже существует",
    "REGISTER_INVALID_PASSWORD":        "Пароль не соответствует требованиям",
    "UPDATE_USER_EMAIL_ALREADY_EXISTS": "Этот email уже используется",
    "UPDATE_USER_INVALID_PASSWORD":     "Пароль не соответствует требованиям",
    "RESET_PASSWORD_BAD_TOKEN":         "Ссылка для сброса пароля недействительна",
    "VERIFY_USER_BAD_TOKEN":            "Ссылка для подтверждения недействительна",
    "Unauthorized":                     MsgSignInRequired,
    "Forbidden":                        MsgAccessDenied,
    "Not Found":                        MsgNotFound,
    "Not authenticated":                MsgSignInRequired,
    "Internal Server Error":            MsgServer,
    "Failed to fetch":                  "Не удалось подключиться к серверу",
}

// phraseRules translate messages by a lower-cased fragment when there is no
// exact match.  Order matters: the first match wins.
var phraseRules = []struct {
    fragment string
    text     string
}{
    {"field required", "Заполните обязательное поле"},
    {"value is not a valid email", "Некорректный email"},
    {"not a valid email address", "Некорректный email"},
    {"string should have at least", "Значение слишком короткое"},
    {"string should have at most", "Значение слишком длинное"},
    {"string should match pattern", "Значение имеет неверный формат"},
    {"input should be greater than or equal", "Значение слишком маленькое"},
    {"input should be greater than", "Значение слишком маленькое"},
    {"input should be a valid integer", "Ожидается целое число"},
    {"input should be a valid number", "Ожидается число"},
    {"input should be a valid datetime", "Некорректная дата"},
    {"not enough seats", MsgNoSeats},
    {"no seats", MsgNoSeats},
}

// Translate turns a backend message into user-facing text line by line.
// Lines that already contain Cyrillic are kept as they are (apart from the
// validator's "Value error, " prefix), so Translate(Translate(m)) ==
// Translate(m).  Unknown English lines pass through unchanged.
func Translate(msg string) string {
    if strings.TrimSpace(msg) == "" {
        return msg
    }
    lines := strings.Split(msg, "\n")
    for i, line := range lines {
        lines[i] = translateLine(line)
    }
    return strings.Join(lines, "\n")
}

func translateLine(line string) string {
    trimmed := strings.TrimPrefix(strings.TrimSpace(line), "Value error, ")
    if trimmed == "" {
        return line
    }
    if hasCyrillic(trimmed) {
        return trimmed
    }
    if t, ok := translations[trimmed]; ok {
        return t
    }
    lower := strings.ToLower(trimmed)
    for _, r := range phraseRules {
        if strings.Contains(lower, r.fragment) {
            return r.text
        }
    }
    return line
}

func hasCyrillic(s string) bool {
    for _, r := range s {
        if unicode.Is(unicode.Cyrillic, r) {
            return true
        }
    }
    return false
}
