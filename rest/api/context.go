package api

import (
	"bytes"
	"encoding/json"
	"sync/atomic"

	"github.com/alpacahq/gofilings/gferrors"
	"github.com/alpacahq/gofilings/service/registry"
	"github.com/alpacahq/gofilings/utils"
	"github.com/alpacahq/gopaca/db"
	"github.com/alpacahq/gopaca/log"
	"github.com/jinzhu/gorm"
	"github.com/kataras/iris"
	irisCtx "github.com/kataras/iris/context"
	"github.com/vmihailenco/msgpack"
)

// MIME types
const (
	charsetUTF8 = "charset=utf-8"
)
const (
	MIMEApplicationJSON            = "application/json"
	MIMEApplicationJSONCharsetUTF8 = MIMEApplicationJSON + "; " + charsetUTF8
	MIMEApplicationMsgpack         = "application/msgpack"
	MIMETextPlain                  = "text/plain"
)

type Context interface {
	iris.Context
	Services() registry.Registry
	Commit() error
	Rollback()
	Tx() *gorm.DB
	Respond(interface{})
	RespondWithStatus(interface{}, int)
	RespondWithContent(string, interface{})
	RespondError(error)
	Read(interface{}) error
}

type context struct {
	iris.Context
	services registry.Registry
	tx       *gorm.DB
	txClosed atomic.Value
}

func (ctx *context) Services() registry.Registry {
	return ctx.services
}

func (ctx *context) Commit() error {
	if !ctx.TxClosed() && ctx.tx != nil {
		ctx.txClosed.Store(true)
		log.Debug("api tx committed", "path", ctx.RequestPath(false))
		err := ctx.tx.Commit().Error
		ctx.tx = nil
		return err
	}
	return nil
}

func (ctx *context) Rollback() {
	if !ctx.TxClosed() && ctx.tx != nil {
		ctx.txClosed.Store(true)
		log.Debug("api tx rolled back", "path", ctx.RequestPath(false))
		if !db.IsConnectionError(ctx.tx.Error) {
			ctx.tx.Rollback()
		}
		ctx.tx = nil
	}
}

func (ctx *context) TxClosed() bool {
	if v := ctx.txClosed.Load(); v != nil && v.(bool) {
		return true
	}
	return false
}

func (ctx *context) Tx() *gorm.DB {
	if ctx.tx == nil || ctx.TxClosed() {
		log.Debug("api tx opened", "path", ctx.RequestPath(false))
		ctx.tx = db.Begin()

		if ctx.tx.Error != nil && db.IsConnectionError(ctx.tx.Error) {
			// long idle connections can get killed at the tcp level by
			// in-between routers; reconnect once before giving up
			if err := db.Reconnect(); err != nil {
				log.Panic("unable to connect to database", "error", err)
			}

			if ctx.tx = db.Begin(); ctx.tx.Error != nil {
				log.Panic("unable to begin database transaction", "error", ctx.tx.Error)
			}
		} else if ctx.tx.Error != nil {
			err := ctx.tx.Error
			ctx.tx = nil
			log.Panic("unrecoverable BEGIN failure", "error", err)
		}
		ctx.txClosed.Store(false)
	}

	return ctx.tx
}

func (ctx *context) Respond(body interface{}) {
	ctx.RespondWithStatus(body, iris.StatusOK)
}

func (ctx *context) RespondWithStatus(body interface{}, statusCode int) {
	ctx.StatusCode(statusCode)
	ctx.RespondWithContent(MIMEApplicationJSON, body)
}

func (ctx *context) RespondWithContent(contentType string, body interface{}) {
	if err := ctx.Commit(); err != nil {
		ctx.RespondError(err)
		return
	}

	ctx.ContentType(contentType)

	if body != nil {
		switch b := body.(type) {
		case []byte:
			ctx.Write(b)
		default:
			ctx.FormatResponse(body)
		}
	}
}

func (ctx *context) RespondError(err error) {
	ctx.Rollback()

	if gferr, ok := err.(gferrors.IException); ok {
		ctx.StatusCode(gferr.ExceptionStatusCode())
		body := gferr.ExceptionBody()
		if !utils.Prod() {
			if gferr.RawException() != nil {
				body["debug"] = gferr.RawException().Error()
			}
		}
		ctx.FormatResponse(body)
	} else {
		ctx.StatusCode(gferrors.InternalServerError.ExceptionStatusCode())
		ctx.FormatResponse(gferrors.InternalServerError.ExceptionBody())
	}

	// only 500s are tracked in detail
	if ctx.GetStatusCode() != 500 {
		return
	}

	var reqBody string
	parsing := map[string]interface{}{}
	if err := ctx.Read(&parsing); err == nil {
		reqBin, _ := json.Marshal(parsing)
		reqBody = string(reqBin)
	}

	log.Error(
		"http exception",
		"method", ctx.Request().Method,
		"url", ctx.Request().URL.String(),
		"error", gferrors.Format(err),
		"body", reqBody,
	)
}

func (ctx *context) Read(v interface{}) error {
	contentType := ctx.Request().Header.Get("Content-Type")
	var err error

	if v != nil {
		switch contentType {
		case MIMEApplicationMsgpack:
			err = ctx.UnmarshalBody(v, irisCtx.UnmarshalerFunc(func(data []byte, outPtr interface{}) error {
				dec := msgpack.NewDecoder(bytes.NewReader(data))
				// honor the json tags on the models
				dec.UseJSONTag(true)
				return dec.Decode(&outPtr)
			}))

		default:
			err = ctx.ReadJSON(v)
		}
	}

	return err
}

// FormatResponse formats a response based on the request Content-Type
func (ctx *context) FormatResponse(body interface{}) {
	contentType := ctx.Request().Header.Get("Content-Type")
	ctx.ContentType(contentType)

	if body != nil {
		switch contentType {
		case MIMEApplicationMsgpack:
			var b bytes.Buffer
			enc := msgpack.NewEncoder(&b)
			enc.UseJSONTag(true)
			if err := enc.Encode(body); err != nil {
				log.Panic("failed to marshal response body (msgpack)", "error", err)
			}

			if _, err := ctx.Write(b.Bytes()); err != nil {
				log.Panic("failed to write response body (msgpack)", "error", err)
			}
		case MIMEApplicationJSON, MIMEApplicationJSONCharsetUTF8:
			ctx.JSON(body)
		default:
			ctx.ContentType(MIMEApplicationJSON)
			ctx.JSON(body)
		}
	}
}
