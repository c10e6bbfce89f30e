package corporateaction

import (
	"github.com/alpacahq/gofilings/gferrors"
	"github.com/alpacahq/gofilings/models/enum"
	"github.com/alpacahq/gofilings/rest/api"
	"github.com/alpacahq/gofilings/service/corporateaction"
)

// List returns stored corporate actions filtered by the query string.
func List(ctx api.Context) {
	srv := ctx.Services().CorporateAction().WithTx(ctx.Tx())

	q := corporateaction.ListQuery{
		Ticker:        ctx.URLParam("ticker"),
		IssuerCIK:     ctx.URLParam("cik"),
		ActionType:    ctx.URLParam("action_type"),
		Status:        ctx.URLParam("status"),
		EffectiveFrom: ctx.URLParam("effective_from"),
		EffectiveTo:   ctx.URLParam("effective_to"),
		Limit:         ctx.URLParamIntDefault("limit", 0),
		Offset:        ctx.URLParamIntDefault("offset", 0),
	}

	if q.ActionType != "" && !enum.ValidActionType(enum.ActionType(q.ActionType)) {
		ctx.RespondError(gferrors.InvalidRequestParam.WithMsg("unknown action_type"))
		return
	}

	if actions, err := srv.List(q); err != nil {
		ctx.RespondError(err)
	} else {
		ctx.Respond(actions)
	}
}

// Get returns the full aggregate, including terms, sources, provenance
// and extras, reconstructed from its stored snapshot.
func Get(ctx api.Context) {
	srv := ctx.Services().CorporateAction().WithTx(ctx.Tx())

	if ca, err := srv.Get(ctx.Params().Get("event_id")); err != nil {
		ctx.RespondError(err)
	} else {
		ctx.Respond(ca)
	}
}

// Sources returns the citation audit trail for one event.
func Sources(ctx api.Context) {
	srv := ctx.Services().CorporateAction().WithTx(ctx.Tx())

	eventID := ctx.Params().Get("event_id")

	// 404 on unknown events rather than an empty citation list
	if _, err := srv.GetRow(eventID); err != nil {
		ctx.RespondError(err)
		return
	}

	if sources, err := srv.Sources(eventID); err != nil {
		ctx.RespondError(err)
	} else {
		ctx.Respond(sources)
	}
}
