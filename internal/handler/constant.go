package handler

import (
	"context"
	"strconv"

	"github.com/cloudwego/hertz/pkg/app"

	"FinTrack/internal/service"
	"FinTrack/pkg/errors"
	"FinTrack/pkg/response"
)

// GET /v1/constant/countries
func ListCountries(ctx context.Context, c *app.RequestContext) {
	data, err := service.Constant().Countries(ctx)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}
	response.SuccessWithMeta(ctx, c, data, map[string]interface{}{"count": len(data)})
}

// GET /v1/constant/cities?countryId=1
func ListCities(ctx context.Context, c *app.RequestContext) {
	countryID, err := strconv.ParseInt(c.Query("countryId"), 10, 64)
	if err != nil {
		response.Error(ctx, c, errors.InvalidRequest)
		return
	}

	data, err := service.Constant().Cities(ctx, countryID)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}
	response.SuccessWithMeta(ctx, c, data, map[string]interface{}{"count": len(data)})
}

// GET /v1/constant/currencies
func ListCurrencies(ctx context.Context, c *app.RequestContext) {
	data, err := service.Constant().Currencies(ctx)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}
	response.SuccessWithMeta(ctx, c, data, map[string]interface{}{"count": len(data)})
}

// GET /v1/constant/languages
func ListLanguages(ctx context.Context, c *app.RequestContext) {
	data, err := service.Constant().Languages(ctx)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}
	response.SuccessWithMeta(ctx, c, data, map[string]interface{}{"count": len(data)})
}
