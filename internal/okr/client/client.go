package client

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/okrtracker/okr-web/internal/apiclient"
	"github.com/okrtracker/okr-web/internal/logging"
	"github.com/okrtracker/okr-web/internal/okr/domain"
)

const basePath = "/api/okr"

// Client is the OKR REST client. Bind it to a session with For before use.
type Client struct {
	transport *apiclient.Transport
}

func New(transport *apiclient.Transport) *Client {
	return &Client{transport: transport}
}

// For returns an OkrService whose authorized calls carry the token from ts.
// A nil ts sends no credentials.
func (c *Client) For(ts apiclient.TokenSource) *OkrService {
	return &OkrService{transport: c.transport, tokens: ts}
}

// OkrService issues the OKR API calls for one session. Every method recovers
// from failure and reports it through the returned Result; none return an
// error or panic.
type OkrService struct {
	transport *apiclient.Transport
	tokens    apiclient.TokenSource
}

func (s *OkrService) token() string {
	return apiclient.BearerToken(s.tokens)
}

// GetOkrs fetches every OKR. Falls back to an empty list.
func (s *OkrService) GetOkrs(ctx context.Context) apiclient.Result[[]domain.Okr] {
	const op = "getOkrs"
	okrs, err := apiclient.Do[domain.OkrList](ctx, s.transport, apiclient.Request{
		Operation: op,
		Path:      basePath + "/all",
	})
	if err != nil {
		return apiclient.Recover(ctx, op, []domain.Okr{}, err)
	}
	logging.FromContext(ctx).LogInfo(op, "fetched okrs")
	return listResult(okrs)
}

// GetKeyResults fetches the key results of one OKR.
func (s *OkrService) GetKeyResults(ctx context.Context, okrID string) apiclient.Result[domain.KeyResultSet] {
	const op = "getKeyResults"
	krs, err := apiclient.Do[domain.KeyResultSet](ctx, s.transport, apiclient.Request{
		Operation: op,
		Path:      basePath + "/keyresults/" + apiclient.PathEscape(okrID),
		Token:     s.token(),
	})
	if err != nil {
		return apiclient.Recover[domain.KeyResultSet](ctx, op, nil, err)
	}
	logging.FromContext(ctx).LogInfof(op, "retrieved key results for OKR with id=%s", okrID)
	if len(krs) == 0 {
		return apiclient.Empty(domain.KeyResultSet{})
	}
	return apiclient.OK(krs)
}

// GetCompanyOkrs fetches every OKR owned by company.
func (s *OkrService) GetCompanyOkrs(ctx context.Context, company string) apiclient.Result[[]domain.Okr] {
	const op = "getCompanyOkrs"
	okrs, err := apiclient.Do[domain.OkrList](ctx, s.transport, apiclient.Request{
		Operation: op,
		Path:      basePath + "/company/" + apiclient.PathEscape(company),
		Token:     s.token(),
	})
	if err != nil {
		return apiclient.Recover[[]domain.Okr](ctx, op, nil, err)
	}
	logging.FromContext(ctx).LogInfof(op, "retrieved all OKRs for %s", company)
	return listResult(okrs)
}

// GetOkrNo404 looks an OKR up by query. A missing id is StatusEmpty with a
// nil value, never a failure.
func (s *OkrService) GetOkrNo404(ctx context.Context, id string) apiclient.Result[*domain.Okr] {
	op := "getOkrNo404 id=" + id
	okrs, err := apiclient.Do[domain.OkrList](ctx, s.transport, apiclient.Request{
		Operation: op,
		Path:      basePath + "/",
		Query:     url.Values{"id": {id}},
	})
	if err != nil {
		return apiclient.Recover[*domain.Okr](ctx, op, nil, err)
	}

	logger := logging.FromContext(ctx)
	if len(okrs) == 0 {
		logger.LogInfof(op, "did not find okr id=%s", id)
		return apiclient.Empty[*domain.Okr](nil)
	}
	logger.LogInfof(op, "fetched okr id=%s", id)
	first := okrs[0]
	return apiclient.OK(&first)
}

// GetOkr fetches an OKR by id. A missing id fails with an error matching
// apiclient.ErrNotFound.
func (s *OkrService) GetOkr(ctx context.Context, id string) apiclient.Result[*domain.Okr] {
	op := "getOkr id=" + id
	okr, err := apiclient.Do[*domain.Okr](ctx, s.transport, apiclient.Request{
		Operation: op,
		Path:      basePath + "/" + apiclient.PathEscape(id),
		Token:     s.token(),
	})
	if err == nil && okr == nil {
		err = apiclient.ErrNotFound
	}
	if err != nil {
		return apiclient.Recover[*domain.Okr](ctx, op, nil, err)
	}
	logging.FromContext(ctx).LogInfof(op, "fetched Okr w id=%s", id)
	return apiclient.OK(okr)
}

// SearchOkrs finds OKRs whose objective contains term. A blank term returns
// an empty list without calling the API. Falls back to an empty list.
func (s *OkrService) SearchOkrs(ctx context.Context, term string) apiclient.Result[[]domain.Okr] {
	const op = "searchOkrs"
	if strings.TrimSpace(term) == "" {
		return apiclient.Empty([]domain.Okr{})
	}
	okrs, err := apiclient.Do[domain.OkrList](ctx, s.transport, apiclient.Request{
		Operation: op,
		Path:      basePath + "/objective/" + apiclient.PathEscape(term),
		Token:     s.token(),
	})
	if err != nil {
		return apiclient.Recover(ctx, op, []domain.Okr{}, err)
	}
	logging.FromContext(ctx).LogInfof(op, "found OKRs matching %q", term)
	return listResult(okrs)
}

// CreateOkr posts a new OKR and returns it with its server-assigned id.
func (s *OkrService) CreateOkr(ctx context.Context, okr domain.Okr) apiclient.Result[*domain.Okr] {
	const op = "createOkr"
	created, err := apiclient.Do[*domain.Okr](ctx, s.transport, apiclient.Request{
		Operation: op,
		Method:    http.MethodPost,
		Path:      basePath,
		Body:      okr,
		Token:     s.token(),
	})
	if err == nil && created == nil {
		err = errors.New("create returned no record")
	}
	if err != nil {
		return apiclient.Recover[*domain.Okr](ctx, op, nil, err)
	}
	logging.FromContext(ctx).LogInfof(op, "added OKR with id=%s", created.ID)
	return apiclient.OK(created)
}

// DeleteOkr deletes the OKR with id and returns the deleted record.
func (s *OkrService) DeleteOkr(ctx context.Context, id string) apiclient.Result[*domain.Okr] {
	const op = "deleteOkr"
	deleted, err := apiclient.Do[*domain.Okr](ctx, s.transport, apiclient.Request{
		Operation: op,
		Method:    http.MethodDelete,
		Path:      basePath + "/" + apiclient.PathEscape(id),
		Token:     s.token(),
	})
	if err != nil {
		return apiclient.Recover[*domain.Okr](ctx, op, nil, err)
	}
	logging.FromContext(ctx).LogInfof(op, "deleted OKR w/ id=%s", id)
	if deleted == nil {
		return apiclient.Empty[*domain.Okr](nil)
	}
	return apiclient.OK(deleted)
}

// DeleteOkrRecord deletes okr by its id.
func (s *OkrService) DeleteOkrRecord(ctx context.Context, okr domain.Okr) apiclient.Result[*domain.Okr] {
	return s.DeleteOkr(ctx, okr.ID)
}

// UpdateOkr replaces the OKR on the server. The id travels in the body.
func (s *OkrService) UpdateOkr(ctx context.Context, okr domain.Okr) apiclient.Result[domain.UpdateAck] {
	const op = "updateOkr"
	ack, err := apiclient.Do[domain.UpdateAck](ctx, s.transport, apiclient.Request{
		Operation: op,
		Method:    http.MethodPut,
		Path:      basePath,
		Body:      okr,
		Token:     s.token(),
	})
	if err != nil {
		return apiclient.Recover[domain.UpdateAck](ctx, op, nil, err)
	}
	logging.FromContext(ctx).LogInfof(op, "updated OKR w/ id=%s", okr.ID)
	return apiclient.OK(ack)
}

func listResult(okrs domain.OkrList) apiclient.Result[[]domain.Okr] {
	if len(okrs) == 0 {
		return apiclient.Empty([]domain.Okr{})
	}
	return apiclient.OK([]domain.Okr(okrs))
}
