package alphavantage_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"stockquotes/internal/httpx"
	"stockquotes/internal/httpx/httpxmock"
	"stockquotes/internal/logging"
	"stockquotes/internal/provider"
	"stockquotes/internal/provider/alphavantage"
)

// dailySeries returns n consecutive days ending at end with closes counting
// down from 100 (newest) and opens one dollar below each close.
func dailySeries(end string, n int) map[string]any {
	last, _ := time.Parse("2006-01-02", end)
	ts := make(map[string]any, n)
	for i := 0; i < n; i++ {
		c := 100.0 - float64(i)
		ts[last.AddDate(0, 0, -i).Format("2006-01-02")] = map[string]any{
			"1. open":   fmt.Sprintf("%.4f", c-1),
			"2. high":   fmt.Sprintf("%.4f", c+1),
			"3. low":    fmt.Sprintf("%.4f", c-2),
			"4. close":  fmt.Sprintf("%.4f", c),
			"5. volume": "1000",
		}
	}
	return map[string]any{
		"Meta Data":           map[string]any{"2. Symbol": "TEST"},
		"Time Series (Daily)": ts,
	}
}

// newProvider wires a provider to a mock upstream that routes on the
// "function" query parameter.
func newProvider(t *testing.T, apiKey string, routes map[string]func(*http.Request) (*http.Response, error)) *alphavantage.Provider {
	t.Helper()

	// Arrange: create a mock controller
	ctrl := gomock.NewController(t)

	// Arrange: create a mock HTTP client
	httpClient := httpxmock.NewMockHTTPClient(ctrl)
	httpClient.EXPECT().
		Do(gomock.Any()).
		DoAndReturn(func(req *http.Request) (*http.Response, error) {
			fn := req.URL.Query().Get("function")
			route, ok := routes[fn]
			require.Truef(t, ok, "unexpected function %q", fn)
			return route(req)
		}).
		AnyTimes()

	return alphavantage.New(alphavantage.Config{APIKey: apiKey, BaseURL: "https://av.test/query"}, &httpx.Client{HTTP: httpClient}, logging.Discard())
}

func TestFetch(t *testing.T) {
	t.Parallel()

	p := newProvider(t, "test-key", map[string]func(*http.Request) (*http.Response, error){
		"TIME_SERIES_DAILY": func(req *http.Request) (*http.Response, error) {
			require.Equal(t, "TEST", req.URL.Query().Get("symbol"))
			require.Equal(t, "full", req.URL.Query().Get("outputsize"))
			require.Equal(t, "test-key", req.URL.Query().Get("apikey"))
			return httpxmock.JSONResponse(http.StatusOK, dailySeries("2025-12-05", 40)), nil
		},
		"OVERVIEW": func(req *http.Request) (*http.Response, error) {
			require.Equal(t, "TEST", req.URL.Query().Get("symbol"))
			return httpxmock.JSONResponse(http.StatusOK, map[string]any{"Symbol": "TEST", "Name": "Test Corp"}), nil
		},
	})

	// Act: fetch a lower-case ticker
	res, err := p.Fetch(t.Context(), "test")
	require.NoError(t, err)

	// Assert: headline fields
	require.Equal(t, "TEST", res.Symbol)
	require.Equal(t, "Test Corp", res.Name)
	require.Equal(t, "USD", res.Currency)
	require.Equal(t, "2025-12-05", res.Timestamp)
	require.InEpsilon(t, 100.0, res.Price, 0.0001)
	// close vs same-day open
	require.InEpsilon(t, 1.0, res.Change, 0.0001)
	require.InEpsilon(t, 1.01, res.ChangePercent, 0.0001)

	// Assert: history comparisons
	require.NotNil(t, res.FiveDays)
	require.InEpsilon(t, 95.0, res.FiveDays.Price, 0.0001)
	require.InEpsilon(t, 5.0, res.FiveDays.Change, 0.0001)
	require.NotNil(t, res.ThirtyDays)
	require.InEpsilon(t, 70.0, res.ThirtyDays.Price, 0.0001)
	require.InEpsilon(t, 42.86, res.ThirtyDays.ChangePercent, 0.0001)
	require.Contains(t, res.Fixed, "december1_2025")
	require.InEpsilon(t, 96.0, res.Fixed["december1_2025"].Price, 0.0001)
}

func TestFetch_ShortHistoryOmitsComparisons(t *testing.T) {
	t.Parallel()

	p := newProvider(t, "test-key", map[string]func(*http.Request) (*http.Response, error){
		"TIME_SERIES_DAILY": func(*http.Request) (*http.Response, error) {
			return httpxmock.JSONResponse(http.StatusOK, dailySeries("2026-01-07", 3)), nil
		},
		"OVERVIEW": func(*http.Request) (*http.Response, error) {
			return httpxmock.JSONResponse(http.StatusOK, map[string]any{}), nil
		},
	})

	res, err := p.Fetch(t.Context(), "TEST")
	require.NoError(t, err)
	require.Nil(t, res.FiveDays)
	require.Nil(t, res.ThirtyDays)
	require.Empty(t, res.Fixed)
	// empty overview falls back to the symbol
	require.Equal(t, "TEST", res.Name)
}

func TestFetch_NameLookupFailureIsSwallowed(t *testing.T) {
	t.Parallel()

	p := newProvider(t, "test-key", map[string]func(*http.Request) (*http.Response, error){
		"TIME_SERIES_DAILY": func(*http.Request) (*http.Response, error) {
			return httpxmock.JSONResponse(http.StatusOK, dailySeries("2026-01-07", 10)), nil
		},
		"OVERVIEW": func(*http.Request) (*http.Response, error) {
			return nil, errors.New("connection refused")
		},
	})

	res, err := p.Fetch(t.Context(), "msft")
	require.NoError(t, err)
	require.Equal(t, "MSFT", res.Name)
	require.NotNil(t, res.FiveDays)
}

func TestFetch_ErrInvalidTicker(t *testing.T) {
	t.Parallel()

	p := newProvider(t, "test-key", map[string]func(*http.Request) (*http.Response, error){
		"TIME_SERIES_DAILY": func(*http.Request) (*http.Response, error) {
			return httpxmock.JSONResponse(http.StatusOK, map[string]any{
				"Error Message": "Invalid API call. Please retry or visit the documentation.",
			}), nil
		},
		"OVERVIEW": func(*http.Request) (*http.Response, error) {
			return httpxmock.JSONResponse(http.StatusOK, map[string]any{}), nil
		},
	})

	res, err := p.Fetch(t.Context(), "NOPE")
	require.Nil(t, res)
	require.Equal(t, provider.KindValidation, provider.KindOf(err))
	require.ErrorContains(t, err, "NOPE")
}

func TestFetch_ErrRateLimited(t *testing.T) {
	t.Parallel()

	for _, field := range []string{"Note", "Information"} {
		p := newProvider(t, "test-key", map[string]func(*http.Request) (*http.Response, error){
			"TIME_SERIES_DAILY": func(*http.Request) (*http.Response, error) {
				return httpxmock.JSONResponse(http.StatusOK, map[string]any{field: "Thank you for using Alpha Vantage!"}), nil
			},
			"OVERVIEW": func(*http.Request) (*http.Response, error) {
				return httpxmock.JSONResponse(http.StatusOK, map[string]any{field: "Thank you for using Alpha Vantage!"}), nil
			},
		})

		_, err := p.Fetch(t.Context(), "AAPL")
		require.Equal(t, provider.KindValidation, provider.KindOf(err), field)
		require.ErrorContains(t, err, "rate limit")
	}
}

func TestFetch_ErrNoTimeSeries(t *testing.T) {
	t.Parallel()

	p := newProvider(t, "test-key", map[string]func(*http.Request) (*http.Response, error){
		"TIME_SERIES_DAILY": func(*http.Request) (*http.Response, error) {
			return httpxmock.JSONResponse(http.StatusOK, map[string]any{}), nil
		},
		"OVERVIEW": func(*http.Request) (*http.Response, error) {
			return httpxmock.JSONResponse(http.StatusOK, map[string]any{}), nil
		},
	})

	_, err := p.Fetch(t.Context(), "AAPL")
	require.Equal(t, provider.KindValidation, provider.KindOf(err))
	require.ErrorContains(t, err, "No data found for ticker: AAPL")
}

func TestFetch_ErrTimeout(t *testing.T) {
	t.Parallel()

	p := newProvider(t, "test-key", map[string]func(*http.Request) (*http.Response, error){
		"TIME_SERIES_DAILY": func(req *http.Request) (*http.Response, error) {
			return nil, &url.Error{Op: "Get", URL: req.URL.String(), Err: context.DeadlineExceeded}
		},
		"OVERVIEW": func(*http.Request) (*http.Response, error) {
			return httpxmock.JSONResponse(http.StatusOK, map[string]any{}), nil
		},
	})

	_, err := p.Fetch(t.Context(), "AAPL")
	require.Equal(t, provider.KindTimeout, provider.KindOf(err))
}

func TestFetch_ErrUpstreamStatus(t *testing.T) {
	t.Parallel()

	p := newProvider(t, "test-key", map[string]func(*http.Request) (*http.Response, error){
		"TIME_SERIES_DAILY": func(*http.Request) (*http.Response, error) {
			return httpxmock.RawResponse(http.StatusServiceUnavailable, "down"), nil
		},
		"OVERVIEW": func(*http.Request) (*http.Response, error) {
			return httpxmock.RawResponse(http.StatusServiceUnavailable, "down"), nil
		},
	})

	_, err := p.Fetch(t.Context(), "AAPL")
	require.Equal(t, provider.KindNetwork, provider.KindOf(err))
}

func TestFetch_ErrMissingAPIKey(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	httpClient := httpxmock.NewMockHTTPClient(ctrl)

	// Assert: no upstream call is attempted
	httpClient.EXPECT().Do(gomock.Any()).Times(0)

	p := alphavantage.New(alphavantage.Config{}, &httpx.Client{HTTP: httpClient}, logging.Discard())
	_, err := p.Fetch(t.Context(), "AAPL")
	require.Equal(t, provider.KindConfig, provider.KindOf(err))
	require.ErrorContains(t, err, "ALPHA_VANTAGE_API_KEY")
	require.Equal(t, alphavantage.Slug, p.Name())
}
