// Package chembl is the remote catalog client for the ChEMBL REST API.  It
// performs single attempts only; retry and concurrency decisions belong to
// the caller.
package chembl

import (
	"context"
	"encoding/json"
	stdliberrors "errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/turtacn/OrphaMine/internal/domain/molecule"
	"github.com/turtacn/OrphaMine/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/OrphaMine/pkg/errors"
)

const (
	defaultUserAgent     = "orphamine/1.0"
	defaultListTimeout   = 30 * time.Second
	defaultDetailTimeout = 10 * time.Second

	// maxBodyBytes caps how much of a response is read.
	maxBodyBytes = 8 << 20
)

// Client talks to the ChEMBL molecule endpoints.
type Client struct {
	baseURL       string
	httpClient    *http.Client
	userAgent     string
	listTimeout   time.Duration
	detailTimeout time.Duration
	logger        logging.Logger
}

// APIError is a non-2xx response from the catalog.
type APIError struct {
	StatusCode int
	URL        string
	RequestID  string
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("chembl: HTTP %d for %s [request_id=%s]", e.StatusCode, e.URL, e.RequestID)
}

// IsNotFound reports a 404.
func (e *APIError) IsNotFound() bool {
	return e.StatusCode == http.StatusNotFound
}

// IsRetryable reports 5xx and 429 responses.
func (e *APIError) IsRetryable() bool {
	return e.StatusCode >= 500 || e.StatusCode == http.StatusTooManyRequests
}

// NewClient creates a client for baseURL, e.g.
// https://www.ebi.ac.uk/chembl/api/data.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	parsed, err := url.Parse(baseURL)
	if baseURL == "" || err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return nil, errors.Newf(errors.ErrCodeConfiguration, "invalid catalog base URL %q", baseURL)
	}

	c := &Client{
		baseURL:       strings.TrimSuffix(baseURL, "/"),
		httpClient:    &http.Client{},
		userAgent:     defaultUserAgent,
		listTimeout:   defaultListTimeout,
		detailTimeout: defaultDetailTimeout,
		logger:        logging.NewNopLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.Named("chembl")
	return c, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Listing
// ─────────────────────────────────────────────────────────────────────────────

type listResponse struct {
	Molecules *[]struct {
		MoleculeChEMBLID string `json:"molecule_chembl_id"`
	} `json:"molecules"`
}

// ListPage returns the identifiers on one page of the molecule listing, in
// catalog order.  Stubs without an identifier are skipped.  An empty slice
// means the catalog is exhausted.  Every failure is ErrCodeRemoteTransient.
func (c *Client) ListPage(ctx context.Context, limit, offset int) ([]string, error) {
	q := url.Values{}
	q.Set("limit", strconv.Itoa(limit))
	q.Set("offset", strconv.Itoa(offset))

	var resp listResponse
	if err := c.getJSON(ctx, c.listTimeout, "/molecule.json", q, &resp); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, errors.Wrapf(err, errors.ErrCodeRemoteTransient, "list molecules at offset %d", offset)
	}
	if resp.Molecules == nil {
		return nil, errors.Newf(errors.ErrCodeRemoteTransient,
			"list molecules at offset %d: response has no molecules field", offset)
	}

	ids := make([]string, 0, len(*resp.Molecules))
	for _, stub := range *resp.Molecules {
		if id := strings.TrimSpace(stub.MoleculeChEMBLID); id != "" {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Detail
// ─────────────────────────────────────────────────────────────────────────────

type moleculeResponse struct {
	MoleculeChEMBLID string   `json:"molecule_chembl_id"`
	PrefName         string   `json:"pref_name"`
	MoleculeType     string   `json:"molecule_type"`
	MaxPhase         optFloat `json:"max_phase"`
	StructureType    string   `json:"structure_type"`
	FirstApproval    optInt   `json:"first_approval"`

	Properties *struct {
		ALogP            optFloat `json:"alogp"`
		PSA              optFloat `json:"psa"`
		QEDWeighted      optFloat `json:"qed_weighted"`
		MWFreebase       optFloat `json:"mw_freebase"`
		FullMWT          optFloat `json:"full_mwt"`
		HBA              optInt   `json:"hba"`
		HBD              optInt   `json:"hbd"`
		NumRo5Violations optInt   `json:"num_ro5_violations"`
		CXLogP           optFloat `json:"cx_logp"`
	} `json:"molecule_properties"`

	Structures *struct {
		CanonicalSMILES string `json:"canonical_smiles"`
		StandardInChI   string `json:"standard_inchi"`
	} `json:"molecule_structures"`
}

func (r *moleculeResponse) toMolecule() *molecule.Molecule {
	m := &molecule.Molecule{
		ChEMBLID:      strings.TrimSpace(r.MoleculeChEMBLID),
		PrefName:      r.PrefName,
		MoleculeType:  r.MoleculeType,
		MaxPhase:      r.MaxPhase.v,
		StructureType: r.StructureType,
		FirstApproval: r.FirstApproval.v,
	}
	if p := r.Properties; p != nil {
		m.ALogP = p.ALogP.v
		m.PSA = p.PSA.v
		m.QEDWeighted = p.QEDWeighted.v
		m.MWFreebase = p.MWFreebase.v
		m.FullMWT = p.FullMWT.v
		m.HBA = p.HBA.v
		m.HBD = p.HBD.v
		m.NumRo5Violations = p.NumRo5Violations.v
		m.CXLogP = p.CXLogP.v
	}
	if s := r.Structures; s != nil {
		m.SMILES = strings.TrimSpace(s.CanonicalSMILES)
		m.InChI = strings.TrimSpace(s.StandardInChI)
	}
	return m
}

// FetchDetail retrieves and validates one molecule.  A 4xx response is
// ErrCodeRemoteRejected, a 5xx or transport failure ErrCodeRemoteTransient,
// and a body that does not fit the molecule schema ErrCodeRecordRejected.
func (c *Client) FetchDetail(ctx context.Context, id string) (*molecule.Molecule, error) {
	if strings.TrimSpace(id) == "" {
		return nil, errors.RecordRejected("empty molecule identifier")
	}

	var resp moleculeResponse
	err := c.getJSON(ctx, c.detailTimeout, "/molecule/"+url.PathEscape(id)+".json", nil, &resp)
	if err != nil {
		var apiErr *APIError
		switch {
		case ctx.Err() != nil:
			return nil, ctx.Err()
		case stdliberrors.As(err, &apiErr) && !apiErr.IsRetryable():
			return nil, errors.Wrapf(err, errors.ErrCodeRemoteRejected, "fetch %s", id)
		case isDecodeError(err):
			return nil, errors.Wrapf(err, errors.ErrCodeRecordRejected, "decode %s", id)
		default:
			return nil, errors.Wrapf(err, errors.ErrCodeRemoteTransient, "fetch %s", id)
		}
	}

	m := resp.toMolecule()
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Transport
// ─────────────────────────────────────────────────────────────────────────────

type decodeError struct{ err error }

func (e *decodeError) Error() string { return "malformed response body: " + e.err.Error() }
func (e *decodeError) Unwrap() error { return e.err }

func isDecodeError(err error) bool {
	var de *decodeError
	return stdliberrors.As(err, &de)
}

// getJSON performs one GET bounded by timeout and decodes a JSON body into
// out.  Non-2xx responses are returned as *APIError; a non-JSON content type
// or an undecodable body as *decodeError.
func (c *Client) getJSON(ctx context.Context, timeout time.Duration, path string, q url.Values, out interface{}) error {
	reqCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	fullURL := c.baseURL + path
	if len(q) > 0 {
		fullURL += "?" + q.Encode()
	}
	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, fullURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	requestID := uuid.New().String()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("X-Request-ID", requestID)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}
	c.logger.Debug("catalog request",
		logging.String("url", fullURL),
		logging.Int("status", resp.StatusCode),
		logging.Duration("duration", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{StatusCode: resp.StatusCode, URL: fullURL, RequestID: requestID, Body: truncate(string(body), 256)}
	}
	mediaType, _, _ := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	if mediaType != "application/json" {
		return &decodeError{err: fmt.Errorf("unexpected content type %q", resp.Header.Get("Content-Type"))}
	}
	if err := json.Unmarshal(body, out); err != nil {
		return &decodeError{err: err}
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

//Personal.AI order the ending
