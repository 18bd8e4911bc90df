package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind: класс ошибки; от него зависит, как UI показывает ошибку и можно ли повторить действие.
type Kind string

const (
	KindConfiguration Kind = "configuration" // нет/неверные ключи внешнего сервиса
	KindTransport     Kind = "transport"     // сеть/сервис; повтор тем же действием
	KindValidation    Kind = "validation"    // отклонено синхронно, состояние не менялось
	KindParse         Kind = "parse"         // битый ответ модели, наружу не выходит
	KindNotFound      Kind = "not_found"
	KindBusy          Kind = "busy" // уже идёт сохранение той же формы
	KindUnknown       Kind = "unknown"
)

type Error struct {
	Kind  Kind
	Op    string // где случилось: "extract", "sheets.append", ...
	Field string // для validation: ключ поля
	Msg   string
	Err   error
}

func (e *Error) Error() string {
	switch {
	case e.Op != "" && e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Msg, e.Err)
	case e.Op != "":
		return fmt.Sprintf("%s: %s", e.Op, e.Msg)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	default:
		return e.Msg
	}
}

func (e *Error) Unwrap() error { return e.Err }

func newErr(k Kind, op, msg string, err error) *Error {
	return &Error{Kind: k, Op: op, Msg: msg, Err: err}
}

func Configuration(op, msg string, err error) *Error { return newErr(KindConfiguration, op, msg, err) }
func Transport(op, msg string, err error) *Error     { return newErr(KindTransport, op, msg, err) }
func Parse(op, msg string, err error) *Error         { return newErr(KindParse, op, msg, err) }
func NotFound(op, msg string) *Error                 { return newErr(KindNotFound, op, msg, nil) }
func Busy(op, msg string) *Error                     { return newErr(KindBusy, op, msg, nil) }
func Unknown(op, msg string, err error) *Error       { return newErr(KindUnknown, op, msg, err) }

// Validation: отказ по конкретному полю; sentinel кладём в Err, чтобы работал errors.Is.
func Validation(field, msg string, sentinel error) *Error {
	return &Error{Kind: KindValidation, Field: field, Msg: msg, Err: sentinel}
}

// KindOf разворачивает цепочку; всё, что не *Error, считаем unknown.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// Message: текст для пользователя без технического хвоста.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Msg != "" {
		return e.Msg
	}
	if err == nil {
		return ""
	}
	return err.Error()
}

func FieldOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Field
	}
	return ""
}

// HTTPStatus как statusForErrors в API, один класс ошибки → один код.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindBusy:
		return http.StatusConflict
	case KindConfiguration:
		return http.StatusServiceUnavailable
	case KindTransport:
		return http.StatusBadGateway
	case "":
		return http.StatusOK
	default:
		return http.StatusInternalServerError
	}
}
