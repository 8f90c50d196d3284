package routes

import (
	"strconv"
	"time"

	"homeswap-server/services"
	"homeswap-server/utils"

	"github.com/kataras/iris/v12"
	"github.com/kataras/iris/v12/middleware/jwt"
)

// SwapHandler exposes the matching engine over HTTP. The service is
// injected so the handler carries no storage globals of its own.
type SwapHandler struct {
	svc *services.SwapService
}

func NewSwapHandler(svc *services.SwapService) *SwapHandler {
	return &SwapHandler{svc: svc}
}

// SubmitBid validates and stores a new swap bid. Matching runs
// synchronously as a side effect; the response is the bid itself, with
// its status reflecting whether a match was proposed.
func (h *SwapHandler) SubmitBid(ctx iris.Context) {
	var input SubmitBidInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	claims := jwt.Get(ctx).(*utils.AccessToken)

	bid, err := h.svc.SubmitBid(claims.ID, input.DesiredLocation, input.StartDate, input.EndDate)
	if err != nil {
		utils.HandleAppError(err, ctx)
		return
	}

	ctx.StatusCode(iris.StatusCreated)
	ctx.JSON(bid)
}

func (h *SwapHandler) ListBids(ctx iris.Context) {
	claims := jwt.Get(ctx).(*utils.AccessToken)

	bids, err := h.svc.BidsForUser(claims.ID)
	if err != nil {
		utils.HandleAppError(err, ctx)
		return
	}

	ctx.JSON(bids)
}

func (h *SwapHandler) ListMatches(ctx iris.Context) {
	claims := jwt.Get(ctx).(*utils.AccessToken)

	matches, err := h.svc.MatchesForUser(claims.ID)
	if err != nil {
		utils.HandleAppError(err, ctx)
		return
	}

	ctx.JSON(matches)
}

func (h *SwapHandler) GetMatch(ctx iris.Context) {
	matchID, ok := matchIDParam(ctx)
	if !ok {
		return
	}
	claims := jwt.Get(ctx).(*utils.AccessToken)

	match, err := h.svc.GetMatch(matchID, claims.ID)
	if err != nil {
		utils.HandleAppError(err, ctx)
		return
	}

	ctx.JSON(match)
}

func (h *SwapHandler) AcceptMatch(ctx iris.Context) {
	matchID, ok := matchIDParam(ctx)
	if !ok {
		return
	}
	claims := jwt.Get(ctx).(*utils.AccessToken)

	match, err := h.svc.AcceptMatch(matchID, claims.ID)
	if err != nil {
		utils.HandleAppError(err, ctx)
		return
	}

	ctx.JSON(iris.Map{"matchID": match.ID, "status": match.Status})
}

func (h *SwapHandler) RejectMatch(ctx iris.Context) {
	matchID, ok := matchIDParam(ctx)
	if !ok {
		return
	}
	claims := jwt.Get(ctx).(*utils.AccessToken)

	match, err := h.svc.RejectMatch(matchID, claims.ID)
	if err != nil {
		utils.HandleAppError(err, ctx)
		return
	}

	ctx.JSON(iris.Map{"matchID": match.ID, "status": match.Status})
}

func matchIDParam(ctx iris.Context) (uint, bool) {
	idStr := ctx.Params().Get("id")
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil {
		utils.CreateError(iris.StatusBadRequest, "Validation Error", "Invalid match ID", ctx)
		return 0, false
	}
	return uint(id), true
}

type SubmitBidInput struct {
	DesiredLocation string    `json:"desiredLocation" validate:"required,max=256"`
	StartDate       time.Time `json:"startDate" validate:"required"`
	EndDate         time.Time `json:"endDate" validate:"required"`
}
