package booking

import (
    "context"
    "errors"

    "github.com/iliyamo/excursion-storefront/internal/apiclient"
)

// Messages shown next to the booking form.
const (
    MsgBooked        = "Экскурсия успешно забронирована"
    MsgBookingFailed = "Не удалось забронировать экскурсию"
    MsgNoSeatsRetry  = "На выбранные дату и время нет свободных мест. Выберите другую дату или время."
    MsgSlotsFailed   = "Не удалось загрузить доступные даты"
    msgConnPrefix    = "Ошибка подключения: "
)

// Precondition and selection errors.  Their text is displayed as is.
var (
    ErrSignInRequired    = errors.New("Для бронирования нужно войти в личный кабинет")
    ErrNoDate            = errors.New("Выберите дату для бронирования")
    ErrNoTime            = errors.New("Выберите время для бронирования")
    ErrInvalidPeople     = errors.New("Количество человек должно быть не меньше 1")
    ErrDateUnavailable   = errors.New("На эту дату нет свободного времени")
    ErrTimeUnavailable   = errors.New("Это время недоступно для бронирования")
    ErrStaleAvailability = errors.New("booking: availability superseded by a newer selection")
)

// failureMessage turns a booking error into the text shown to the visitor.
func failureMessage(err error) string {
    switch {
    case apiclient.IsCapacity(err):
        return MsgNoSeatsRetry
    case apiclient.IsConnectivity(err):
        return msgConnPrefix + err.Error()
    case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
        return MsgBookingFailed
    }
    var re *apiclient.RequestError
    if errors.As(err, &re) && re.Message != "" {
        return re.Message
    }
    return MsgBookingFailed
}

// slotsFailureMessage is failureMessage for the availability query.
func slotsFailureMessage(err error) string {
    if apiclient.IsConnectivity(err) {
        return msgConnPrefix + err.Error()
    }
    var re *apiclient.RequestError
    if errors.As(err, &re) && re.Message != "" {
        return re.Message
    }
    return MsgSlotsFailed
}
