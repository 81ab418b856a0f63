package apiclient

import (
    "context"
    "encoding/json"
    "io"
    "net/http"
    "net/http/httptest"
    "strings"
    "testing"

    "github.com/iliyamo/excursion-storefront/internal/model"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
    t.Helper()
    srv := httptest.NewServer(h)
    t.Cleanup(srv.Close)
    return New(srv.URL)
}

func TestSearchExcursions_Connectivity(t *testing.T) {
    srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
    base := srv.URL
    srv.Close()

    c := New(base)
    _, err := c.SearchExcursions(context.Background(), model.ExcursionFilter{Country: "Italy"})
    if err == nil {
        t.Fatalf("expected error, got nil")
    }
    if !IsConnectivity(err) {
        t.Fatalf("expected connectivity kind, got %v", KindOf(err))
    }
    if !strings.Contains(err.Error(), base) {
        t.Fatalf("expected message to name %s, got %q", base, err.Error())
    }
    if strings.Contains(err.Error(), "connection refused") || strings.Contains(err.Error(), "dial tcp") {
        t.Fatalf("low-level error leaked into message: %q", err.Error())
    }
}

func TestSearchExcursions_QueryParameters(t *testing.T) {
    var got string
    c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
        got = r.URL.RawQuery
        _, _ = io.WriteString(w, `[{"excursion_id":7,"title":"Рим","photos":"a.jpg,b.jpg"}]`)
    })
    list, err := c.SearchExcursions(context.Background(), model.ExcursionFilter{Country: "Italy", People: 2, HasChildren: true})
    if err != nil {
        t.Fatalf("unexpected error: %v", err)
    }
    if got != "country=Italy&has_children=true&people=2" {
        t.Fatalf("unexpected query %q", got)
    }
    if len(list) != 1 || list[0].ID != 7 || len(list[0].Photos) != 2 {
        t.Fatalf("unexpected result %+v", list)
    }
}

func TestDo_NoContent(t *testing.T) {
    c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
        w.WriteHeader(http.StatusNoContent)
    })
    if err := c.AdminDeleteExcursion(context.Background(), "tok", 3); err != nil {
        t.Fatalf("expected nil error on 204, got %v", err)
    }
}

func TestDo_BearerAndRequestID(t *testing.T) {
    var auth, rid string
    c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
        auth = r.Header.Get("Authorization")
        rid = r.Header.Get("X-Request-ID")
        _, _ = io.WriteString(w, `{"id":1,"name":"Иван","email":"i@example.com"}`)
    })
    u, err := c.CurrentUser(context.Background(), "abc")
    if err != nil {
        t.Fatalf("unexpected error: %v", err)
    }
    if auth != "Bearer abc" {
        t.Fatalf("expected bearer header, got %q", auth)
    }
    if rid == "" {
        t.Fatalf("expected X-Request-ID to be set")
    }
    if u.Name != "Иван" {
        t.Fatalf("unexpected user %+v", u)
    }
}

func TestLogin_FormEncoded(t *testing.T) {
    c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
        if ct := r.Header.Get("Content-Type"); ct != "application/x-www-form-urlencoded" {
            t.Errorf("unexpected content type %q", ct)
        }
        _ = r.ParseForm()
        if r.PostForm.Get("username") != "a@b.c" || r.PostForm.Get("password") != "pw" {
            t.Errorf("unexpected form %v", r.PostForm)
        }
        _, _ = io.WriteString(w, `{"access_token":"jwt","token_type":"bearer"}`)
    })
    tok, err := c.Login(context.Background(), "a@b.c", "pw")
    if err != nil || tok != "jwt" {
        t.Fatalf("expected token jwt, got %q (%v)", tok, err)
    }
}

func TestDecodeError_Precedence(t *testing.T) {
    cases := []struct {
        name   string
        status int
        body   string
        kind   ErrorKind
        want   string
    }{
        {"validation list", 422, `{"detail":[{"loc":["body","email"],"msg":"value is not a valid email address"},{"loc":["body","name"],"msg":"Field required"}]}`, KindValidation, "Некорректный email\nЗаполните обязательное поле"},
        {"string detail", 404, `{"detail":"Экскурсия не найдена"}`, KindNotFound, "Экскурсия не найдена"},
        {"object detail", 400, `{"detail":{"code":"REGISTER_INVALID_PASSWORD","reason":"too short"}}`, KindOther, "too short"},
        {"message field", 400, `{"message":"LOGIN_BAD_CREDENTIALS"}`, KindOther, "Неверный email или пароль"},
        {"raw text", 400, `plain failure`, KindOther, "plain failure"},
        {"html page hidden", 502, `<html>bad gateway</html>`, KindServer, MsgServer},
        {"empty unauthorized", 401, ``, KindUnauthorized, MsgSignInRequired},
        {"empty forbidden", 403, ``, KindForbidden, MsgAccessDenied},
        {"fallback literal", 418, ``, KindOther, msgRequestFailed},
        {"capacity", 400, `{"detail":"На выбранную дату и время нет свободных мест"}`, KindCapacity, MsgNoSeats},
    }
    for _, tc := range cases {
        t.Run(tc.name, func(t *testing.T) {
            re := decodeError(tc.status, []byte(tc.body))
            if re.Kind != tc.kind {
                t.Fatalf("expected kind %v, got %v", tc.kind, re.Kind)
            }
            if re.Message != tc.want {
                t.Fatalf("expected message %q, got %q", tc.want, re.Message)
            }
        })
    }
}

func TestDecodeError_ValidationFields(t *testing.T) {
    re := decodeError(422, []byte(`{"detail":[{"loc":["body","phone"],"msg":"String should match pattern"}]}`))
    if len(re.Fields) != 1 || re.Fields[0].Field != "phone" {
        t.Fatalf("unexpected fields %+v", re.Fields)
    }
}

func TestCreateBooking_BadRequestIsCapacity(t *testing.T) {
    c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
        w.WriteHeader(http.StatusBadRequest)
        _, _ = io.WriteString(w, `{"detail":"slot unavailable"}`)
    })
    _, err := c.CreateBooking(context.Background(), "tok", model.BookingRequest{ExcursionID: 1, NumberOfPeople: 1})
    if !IsCapacity(err) {
        t.Fatalf("expected capacity error, got %v (%v)", KindOf(err), err)
    }
}

func TestCreateBooking_Body(t *testing.T) {
    var body map[string]any
    c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
        if r.Method != http.MethodPost || r.URL.Path != "/api/bookings" {
            t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
        }
        _ = json.NewDecoder(r.Body).Decode(&body)
        w.WriteHeader(http.StatusCreated)
        _, _ = io.WriteString(w, `{"booking":{"booking_id":9,"status":"confirmed"},"message":"Экскурсия успешно забронирована"}`)
    })
    conf, err := c.CreateBooking(context.Background(), "tok", model.BookingRequest{
        ExcursionID: 42, Date: "2025-06-01T10:00:00.000Z", NumberOfPeople: 2,
    })
    if err != nil {
        t.Fatalf("unexpected error: %v", err)
    }
    if conf.Booking.ID != 9 || conf.Message == "" {
        t.Fatalf("unexpected confirmation %+v", conf)
    }
    if body["excursion_id"].(float64) != 42 || body["number_of_people"].(float64) != 2 || body["has_children"].(bool) {
        t.Fatalf("unexpected body %v", body)
    }
}

func TestTranslate_Idempotent(t *testing.T) {
    inputs := []string{
        "LOGIN_BAD_CREDENTIALS",
        "Value error, Пароль должен содержать цифру",
        "Field required\nvalue is not a valid email address",
        "Экскурсия не найдена",
        "something unknown",
    }
    for _, in := range inputs {
        once := Translate(in)
        twice := Translate(once)
        if once != twice {
            t.Fatalf("translate not idempotent for %q: %q then %q", in, once, twice)
        }
    }
    if got := Translate("Экскурсия не найдена"); got != "Экскурсия не найдена" {
        t.Fatalf("expected translated message unchanged, got %q", got)
    }
}
