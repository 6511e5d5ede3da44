package intercept

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/elazarl/goproxy"
	"github.com/google/uuid"

	"capestudio/internal/cape"
	"capestudio/internal/catalog"
	"capestudio/internal/faults"
	"capestudio/internal/fileutil"
	"capestudio/internal/logging"
)

const (
	component        = "intercept"
	zipMediaType     = "application/zip"
	maxLookupBody    = 1 << 20
	lookupItemField  = "ItemId"
	lookupItemType   = "bundle"
	lookupBinaryType = "personabinary"
)

// CapeSource resolves item ids to cape definitions.
type CapeSource interface {
	Find(itemID string) (cape.Definition, bool)
}

// Options names the intercepted endpoints and the served catalog file.
type Options struct {
	CatalogPageURL   string
	CatalogLookupURL string
	AssetHost        string
	AssetBaseURL     string
	CatalogPath      string
}

// Exchange is the per-exchange state carried from the request hook to the
// response hook.
type Exchange struct {
	Token string
	Kind  Kind
}

// Engine implements the request and response hooks.
type Engine struct {
	opts     Options
	capes    CapeSource
	registry *Registry
	metrics  *Metrics
	logger   *slog.Logger
}

// NewEngine wires an Engine. metrics may be nil.
func NewEngine(opts Options, capes CapeSource, registry *Registry, metrics *Metrics, logger *slog.Logger) *Engine {
	if registry == nil {
		registry = NewRegistry()
	}
	opts.AssetBaseURL = strings.TrimRight(opts.AssetBaseURL, "/")
	opts.CatalogPageURL = canonicalURL(opts.CatalogPageURL)
	opts.CatalogLookupURL = canonicalURL(opts.CatalogLookupURL)
	return &Engine{
		opts:     opts,
		capes:    capes,
		registry: registry,
		metrics:  metrics,
		logger:   logging.NewComponentLogger(logger, component),
	}
}

// Registry returns the shared state the engine consults.
func (e *Engine) Registry() *Registry {
	return e.registry
}

// HandleRequest runs the request phase. It returns the exchange state to hand
// to HandleResponse and, for archive downloads it can serve, a complete
// response that ends the exchange.
func (e *Engine) HandleRequest(req *http.Request) (*Exchange, *http.Response) {
	x := &Exchange{Token: uuid.NewString(), Kind: e.Classify(req)}
	e.metrics.classified(x.Kind)
	logger := e.logger.With(logging.String(logging.FieldExchange, x.Token))

	switch x.Kind {
	case CatalogLookup:
		e.recordLookup(logger, x, req)
		return x, nil
	case ArchiveDownload:
		return x, e.serveArchive(logger, req)
	default:
		return x, nil
	}
}

// HandleResponse runs the response phase for x and returns the response to
// deliver, which is resp itself when nothing is substituted.
func (e *Engine) HandleResponse(x *Exchange, resp *http.Response) *http.Response {
	if x == nil {
		return resp
	}
	logger := e.logger.With(logging.String(logging.FieldExchange, x.Token))

	if resp == nil {
		// The upstream failed; still consume the pending lookup.
		if x.Kind == CatalogLookup {
			e.registry.TakePending(x.Token)
		}
		return nil
	}

	switch x.Kind {
	case CatalogPage:
		return e.replaceCatalog(logger, resp)
	case CatalogLookup:
		return e.answerLookup(logger, x, resp)
	default:
		return resp
	}
}

func (e *Engine) recordLookup(logger *slog.Logger, x *Exchange, req *http.Request) {
	if req.Method != http.MethodPost || req.Body == nil || req.Body == http.NoBody {
		e.metrics.outcome(x.Kind, "no_body")
		return
	}
	original := req.Body
	body, err := io.ReadAll(io.LimitReader(original, maxLookupBody+1))
	if err != nil {
		req.Body = readCloser{Reader: io.MultiReader(bytes.NewReader(body), original), Closer: original}
		e.protocolMismatch(logger, x, faults.Wrap(faults.ErrProtocolMismatch, component, "read lookup body", "", err))
		return
	}
	if len(body) > maxLookupBody {
		// Forward the rest untouched.
		req.Body = readCloser{Reader: io.MultiReader(bytes.NewReader(body), original), Closer: original}
		e.protocolMismatch(logger, x, faults.Wrap(faults.ErrProtocolMismatch, component, "read lookup body",
			fmt.Sprintf("body exceeds %d bytes", maxLookupBody), nil))
		return
	}
	_ = original.Close()
	req.Body = io.NopCloser(bytes.NewReader(body))
	req.ContentLength = int64(len(body))
	if len(bytes.TrimSpace(body)) == 0 {
		e.metrics.outcome(x.Kind, "no_body")
		return
	}

	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err != nil {
		e.protocolMismatch(logger, x, faults.Wrap(faults.ErrProtocolMismatch, component, "decode lookup body", "", err))
		return
	}
	itemID, _ := payload[lookupItemField].(string)
	if itemID == "" {
		e.metrics.outcome(x.Kind, "no_item")
		return
	}
	def, ok := e.capes.Find(itemID)
	if !ok {
		e.metrics.outcome(x.Kind, "foreign_item")
		return
	}
	e.registry.AddPending(x.Token, itemID)
	e.metrics.outcome(x.Kind, "pending")
	logger.Info("lookup targets custom cape",
		logging.String(logging.FieldItemID, itemID),
		logging.String("cape", def.Name),
		logging.String(logging.FieldEventType, "lookup_pending"),
	)
}

func (e *Engine) protocolMismatch(logger *slog.Logger, x *Exchange, err error) {
	x.Kind = PassThrough
	e.metrics.outcome(CatalogLookup, "protocol_mismatch")
	logging.WarnWithContext(logger, "lookup body not understood, passing through", "lookup_protocol_mismatch",
		logging.Error(err),
		logging.String(logging.FieldErrorHint, "the client lookup format may have changed"),
		logging.String(logging.FieldImpact, "the real catalog item is returned for this request"),
	)
}

func (e *Engine) replaceCatalog(logger *slog.Logger, resp *http.Response) *http.Response {
	data, err := os.ReadFile(e.opts.CatalogPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			logging.WarnWithContext(logger, "catalog document not found, passing through", "catalog_missing",
				logging.String("path", e.opts.CatalogPath),
				logging.String(logging.FieldErrorHint, "run capestudio generate"),
				logging.String(logging.FieldImpact, "custom capes are not listed"),
			)
			e.metrics.outcome(CatalogPage, "missing")
		} else {
			logging.WarnWithContext(logger, "catalog document unreadable, passing through", "catalog_unreadable",
				logging.String("path", e.opts.CatalogPath),
				logging.Error(err),
			)
			e.metrics.outcome(CatalogPage, "error")
		}
		return resp
	}
	e.metrics.outcome(CatalogPage, "replaced")
	logger.Info("served catalog document",
		logging.Int("bytes", len(data)),
		logging.String(logging.FieldEventType, "catalog_served"),
	)
	return replace(resp, catalog.MediaType, data)
}

func (e *Engine) answerLookup(logger *slog.Logger, x *Exchange, resp *http.Response) *http.Response {
	itemID, ok := e.registry.TakePending(x.Token)
	if !ok {
		return resp
	}
	def, ok := e.capes.Find(itemID)
	if !ok {
		e.metrics.outcome(CatalogLookup, "cape_removed")
		return resp
	}

	assetID := e.registry.Mint(itemID)
	body, err := json.MarshalIndent(newLookupResponse(def, assetID, e.AssetURL(assetID)), "", "  ")
	if err != nil {
		e.registry.Forget(assetID)
		logging.ErrorWithContext(logger, "encode lookup response", "lookup_encode_failed", logging.Error(err))
		return resp
	}
	e.metrics.outcome(CatalogLookup, "synthesized")
	logger.Info("synthesized lookup response",
		logging.String(logging.FieldItemID, itemID),
		logging.String(logging.FieldAssetID, assetID),
		logging.String(logging.FieldEventType, "lookup_synthesized"),
	)
	return replace(resp, catalog.MediaType, body)
}

// AssetURL is the download URL embedding assetID.
func (e *Engine) AssetURL(assetID string) string {
	return fmt.Sprintf("%s/%s%s", e.opts.AssetBaseURL, assetID, archiveSuffix)
}

func (e *Engine) serveArchive(logger *slog.Logger, req *http.Request) *http.Response {
	candidate, ok := candidateAssetID(req)
	if !ok {
		e.unknownIdentifier(logger, "")
		return nil
	}
	itemID, ok := e.registry.Resolve(candidate)
	if !ok {
		e.unknownIdentifier(logger, candidate)
		return nil
	}
	def, ok := e.capes.Find(itemID)
	if !ok || !fileutil.IsRegularFile(def.ArchivePath) {
		e.metrics.outcome(ArchiveDownload, "archive_missing")
		logging.WarnWithContext(logger, "minted asset has no archive on disk, passing through", "archive_missing",
			logging.String(logging.FieldItemID, itemID),
			logging.String(logging.FieldAssetID, candidate),
			logging.String(logging.FieldErrorHint, "run capestudio generate"),
			logging.String(logging.FieldImpact, "cape download fails in the client"),
		)
		return nil
	}
	data, err := os.ReadFile(def.ArchivePath)
	if err != nil {
		e.metrics.outcome(ArchiveDownload, "error")
		logging.WarnWithContext(logger, "archive unreadable, passing through", "archive_unreadable",
			logging.String(logging.FieldItemID, itemID),
			logging.Error(err),
		)
		return nil
	}
	e.registry.Redeem(candidate)
	e.metrics.outcome(ArchiveDownload, "served")
	e.metrics.servedBytes(len(data))
	logger.Info("served cape archive",
		logging.String(logging.FieldItemID, itemID),
		logging.String(logging.FieldAssetID, candidate),
		logging.Int("bytes", len(data)),
		logging.String(logging.FieldEventType, "archive_served"),
	)
	return goproxy.NewResponse(req, zipMediaType, http.StatusOK, string(data))
}

func (e *Engine) unknownIdentifier(logger *slog.Logger, candidate string) {
	e.metrics.outcome(ArchiveDownload, "unknown_identifier")
	err := faults.Wrap(faults.ErrUnknownIdentifier, component, "resolve asset", candidate, nil)
	logger.Debug("asset id not minted here, passing through",
		logging.Error(err),
		logging.String("error_class", faults.Classify(err)),
	)
}

type readCloser struct {
	io.Reader
	io.Closer
}

// replace returns a 200 response carrying body in place of resp.
func replace(resp *http.Response, contentType string, body []byte) *http.Response {
	var req *http.Request
	if resp != nil {
		req = resp.Request
		if resp.Body != nil {
			_ = resp.Body.Close()
		}
	}
	return goproxy.NewResponse(req, contentType, http.StatusOK, string(body))
}
