// Package gdrive implements the archive.Store interface on the Google Drive
// v3 API using a service account, matching the layout the deployment scripts
// expect: a root folder with year/month subfolders holding JSON snapshots.
package gdrive

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"strings"

	"github.com/enerhub/enerhub/pkg/archive"
	"github.com/enerhub/enerhub/pkg/config"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

const folderMimeType = "application/vnd.google-apps.folder"

// Client talks to Google Drive and satisfies archive.Store.
type Client struct {
	log     logrus.FieldLogger
	svc     *drive.Service
	limiter *rate.Limiter
}

var _ archive.Store = (*Client)(nil)

// New builds a Drive client from the configured credential source. Inline
// JSON takes precedence over a file path; neither configured is a
// configuration error.
func New(ctx context.Context, log logrus.FieldLogger, cfg *config.DriveConfig) (*Client, error) {
	credOpt, err := credentialOption(cfg)
	if err != nil {
		return nil, err
	}

	svc, err := drive.NewService(ctx, credOpt, option.WithScopes(drive.DriveFileScope))
	if err != nil {
		return nil, fmt.Errorf("building Drive service: %w", err)
	}

	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = config.DefaultRequestsPerSecond
	}

	return &Client{
		log:     log.WithField("component", "gdrive"),
		svc:     svc,
		limiter: rate.NewLimiter(rate.Limit(rps), rps),
	}, nil
}

// credentialOption picks the credential source. Inline JSON wins over the
// file path when both are present.
func credentialOption(cfg *config.DriveConfig) (option.ClientOption, error) {
	if cfg.CredentialsJSON != "" {
		if !json.Valid([]byte(cfg.CredentialsJSON)) {
			return nil, fmt.Errorf("inline Drive credentials are not valid JSON")
		}

		return option.WithCredentialsJSON([]byte(cfg.CredentialsJSON)), nil
	}

	if cfg.CredentialsPath != "" {
		return option.WithCredentialsFile(cfg.CredentialsPath), nil
	}

	return nil, config.ErrNoCredentials
}

// FindContainer looks up a non-trashed folder by exact name under the given
// parent. The first match wins; Drive enforces no name uniqueness.
func (c *Client) FindContainer(ctx context.Context, name, parentID string) (string, bool, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", false, err
	}

	list, err := c.svc.Files.List().
		Q(folderQuery(name, parentID)).
		Spaces("drive").
		Fields("files(id, name)").
		Context(ctx).
		Do()
	if err != nil {
		return "", false, classify("query", err)
	}

	if len(list.Files) == 0 {
		return "", false, nil
	}

	return list.Files[0].Id, true, nil
}

// CreateContainer creates a folder under the given parent.
func (c *Client) CreateContainer(ctx context.Context, name, parentID string) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", err
	}

	meta := &drive.File{
		Name:     name,
		MimeType: folderMimeType,
	}
	if parentID != "" {
		meta.Parents = []string{parentID}
	}

	folder, err := c.svc.Files.Create(meta).
		Fields("id").
		Context(ctx).
		Do()
	if err != nil {
		return "", classify("create_folder", err)
	}

	return folder.Id, nil
}

// CreateArtifact uploads content as a file under the given folder. The media
// transfer is chunked, so an interrupted attempt may leave a partial object
// behind; callers retry by re-invoking with content rewound.
func (c *Client) CreateArtifact(ctx context.Context, name, parentID string, content io.Reader, contentType string) (archive.Artifact, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return archive.Artifact{}, err
	}

	meta := &drive.File{Name: name}
	if parentID != "" {
		meta.Parents = []string{parentID}
	}

	created, err := c.svc.Files.Create(meta).
		Media(content, googleapi.ContentType(contentType)).
		Fields("id, name, webViewLink").
		Context(ctx).
		Do()
	if err != nil {
		return archive.Artifact{}, classify("create_file", err)
	}

	c.log.WithFields(logrus.Fields{
		"file": created.Name,
		"link": created.WebViewLink,
	}).Debug("Created Drive file")

	return archive.Artifact{
		ID:       created.Id,
		Name:     created.Name,
		ViewLink: created.WebViewLink,
	}, nil
}

// folderQuery builds the Drive search expression for a folder lookup.
func folderQuery(name, parentID string) string {
	terms := []string{
		fmt.Sprintf("name = '%s'", escapeQueryValue(name)),
		fmt.Sprintf("mimeType = '%s'", folderMimeType),
		"trashed = false",
	}

	if parentID != "" {
		terms = append(terms, fmt.Sprintf("'%s' in parents", escapeQueryValue(parentID)))
	}

	return strings.Join(terms, " and ")
}

// escapeQueryValue escapes the characters Drive treats specially inside
// single-quoted query values.
func escapeQueryValue(v string) string {
	v = strings.ReplaceAll(v, `\`, `\\`)

	return strings.ReplaceAll(v, `'`, `\'`)
}

// classify maps a Drive API error onto the archive failure taxonomy so the
// upload executor can decide whether to retry.
func classify(op string, err error) error {
	return &archive.RemoteError{
		Kind: classifyKind(err),
		Op:   op,
		Err:  err,
	}
}

func classifyKind(err error) archive.FailureKind {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.Code == 429 || apiErr.Code >= 500:
			return archive.KindTransient
		case apiErr.Code == 401:
			return archive.KindAuth
		case apiErr.Code == 403:
			return classifyForbidden(apiErr)
		default:
			return archive.KindPermanent
		}
	}

	// Context cancellation is the caller's decision, never retried.
	if errors.Is(err, context.Canceled) {
		return archive.KindPermanent
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return archive.KindTransient
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return archive.KindTransient
	}

	// Anything else at this level is a transport fault (connection reset,
	// DNS hiccup): the remote is unavailable, not rejecting us.
	return archive.KindTransient
}

// classifyForbidden splits Drive's overloaded 403: throttling reasons are
// retryable, permission and quota reasons are not.
func classifyForbidden(apiErr *googleapi.Error) archive.FailureKind {
	for _, item := range apiErr.Errors {
		switch item.Reason {
		case "rateLimitExceeded", "userRateLimitExceeded":
			return archive.KindTransient
		case "insufficientPermissions", "appNotAuthorizedToFile", "domainPolicy":
			return archive.KindAuth
		}
	}

	return archive.KindPermanent
}
