package storageconfig

import (
	"context"
	"fmt"
	"os"
	"strings"

	"cloud.google.com/go/storage"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"vaultkeeper/internal/chunkstore"
	"vaultkeeper/internal/mirror"
	"vaultkeeper/internal/orgstore"
)

// DefaultFileMode is the permission bits used for chunk files and sidecars
// created by backends built from a Resolved location set.
const DefaultFileMode = 0o644

const (
	s3URLScheme     = "s3://"
	azblobURLScheme = "azblob://"
	gcsURLScheme    = "gs://"
)

// localBackend builds a filesystem-backed mirror.Backend rooted at loc.Path,
// creating the directory if it does not already exist. The organization
// strategy is git-style fan-out: flat directories do not scale past a few
// thousand chunks, and every filesystem tier in a storage policy is expected
// to hold the same chunk population as the primary.
func localBackend(loc mirror.Location) (mirror.Backend, error) {
	if err := os.MkdirAll(loc.Path, 0o755); err != nil {
		return nil, fmt.Errorf("storageconfig: create storage location %q: %w", loc.Path, err)
	}
	store := chunkstore.New(chunkstore.Config{
		Organization: orgstore.NewGitStyle(2),
		Retrieval:    chunkstore.NewFileRetrieval(loc.Path, DefaultFileMode),
		Existence:    chunkstore.NewFileExistence(loc.Path),
		Sidecars:     chunkstore.NewSidecarStore(loc.Path, DefaultFileMode),
	})
	return mirror.NewChunkStoreBackend(loc.Label, store), nil
}

// parseBucketURL splits a "<scheme>bucket/prefix" location path into its
// bucket (or container) name and (possibly empty) key prefix.
func parseBucketURL(scheme, path string) (bucket, prefix string, err error) {
	rest := strings.TrimPrefix(path, scheme)
	if rest == path {
		return "", "", fmt.Errorf("storageconfig: %q is not a %s url", path, scheme)
	}
	bucket, prefix, _ = strings.Cut(rest, "/")
	if bucket == "" {
		return "", "", fmt.Errorf("storageconfig: %q has no bucket name", path)
	}
	return bucket, strings.TrimSuffix(prefix, "/"), nil
}

// parseS3URL splits an "s3://bucket/prefix" location path into its bucket
// and (possibly empty) key prefix.
func parseS3URL(path string) (bucket, prefix string, err error) {
	return parseBucketURL(s3URLScheme, path)
}

// s3Backend builds a mirror.Backend over an S3 bucket named by loc.Path
// ("s3://bucket/prefix"). Credentials come from creds when AccessKeyID is
// set, otherwise from the environment/instance-role default chain; Region
// is passed through to config.LoadDefaultConfig when set.
func s3Backend(ctx context.Context, loc mirror.Location, creds LocationConfig) (mirror.Backend, error) {
	bucket, prefix, err := parseS3URL(loc.Path)
	if err != nil {
		return nil, err
	}

	var optFns []func(*config.LoadOptions) error
	if creds.Region != "" {
		optFns = append(optFns, config.WithRegion(creds.Region))
	}
	if creds.AccessKeyID != "" {
		optFns = append(optFns, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(creds.AccessKeyID, creds.SecretAccessKey, "")))
	}

	cfg, err := config.LoadDefaultConfig(ctx, optFns...)
	if err != nil {
		return nil, fmt.Errorf("storageconfig: load AWS config for %q: %w", loc.Label, err)
	}
	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if creds.Region != "" {
			o.Region = creds.Region
		}
	})
	return mirror.NewS3Backend(loc.Label, client, bucket, prefix, nil), nil
}

// azureConnectionStringEnv is the fallback environment variable consulted
// when a policy location's ConnectionString field is unset, matching the
// Azure SDK's own convention for where operators usually keep it.
const azureConnectionStringEnv = "AZURE_STORAGE_CONNECTION_STRING"

// azblobBackend builds a mirror.Backend over an Azure Blob Storage
// container named by loc.Path ("azblob://container/prefix").
func azblobBackend(ctx context.Context, loc mirror.Location, creds LocationConfig) (mirror.Backend, error) {
	container, prefix, err := parseBucketURL(azblobURLScheme, loc.Path)
	if err != nil {
		return nil, err
	}

	connStr := creds.ConnectionString
	if connStr == "" {
		connStr = os.Getenv(azureConnectionStringEnv)
	}
	if connStr == "" {
		return nil, fmt.Errorf("storageconfig: %q needs a connectionString or %s", loc.Label, azureConnectionStringEnv)
	}

	client, err := azblob.NewClientFromConnectionString(connStr, nil)
	if err != nil {
		return nil, fmt.Errorf("storageconfig: open Azure client for %q: %w", loc.Label, err)
	}
	return mirror.NewAzureBackend(loc.Label, client, container, prefix), nil
}

// gcsBackend builds a mirror.Backend over a Google Cloud Storage bucket
// named by loc.Path ("gs://bucket/prefix"), authenticating via Application
// Default Credentials.
func gcsBackend(ctx context.Context, loc mirror.Location) (mirror.Backend, error) {
	bucket, prefix, err := parseBucketURL(gcsURLScheme, loc.Path)
	if err != nil {
		return nil, err
	}
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("storageconfig: open GCS client for %q: %w", loc.Label, err)
	}
	return mirror.NewGCSBackend(loc.Label, client, bucket, prefix), nil
}

// toTier builds the Backend for loc, dispatching on loc.Path's scheme: an
// s3://, azblob://, or gs:// location builds the matching cloud backend,
// and anything else is treated as a local filesystem directory. creds
// supplies the credential fields from the policy document entry loc was
// resolved from, if any.
func toTier(ctx context.Context, loc mirror.Location, creds LocationConfig) (mirror.Tier, error) {
	var (
		backend mirror.Backend
		err     error
	)
	switch {
	case strings.HasPrefix(loc.Path, s3URLScheme):
		backend, err = s3Backend(ctx, loc, creds)
	case strings.HasPrefix(loc.Path, azblobURLScheme):
		backend, err = azblobBackend(ctx, loc, creds)
	case strings.HasPrefix(loc.Path, gcsURLScheme):
		backend, err = gcsBackend(ctx, loc)
	default:
		backend, err = localBackend(loc)
	}
	if err != nil {
		return mirror.Tier{}, err
	}
	return mirror.Tier{Backend: backend, Location: loc}, nil
}

// credentialsFor looks up the policy location entry matching loc by path,
// returning its credential fields or a zero LocationConfig if none matches
// (the common case: plain filesystem locations carry no credentials).
func credentialsFor(policy Policy, loc mirror.Location) LocationConfig {
	for _, l := range policy.Locations {
		if l.Path == loc.Path {
			return l
		}
	}
	return LocationConfig{}
}

// BuildStore turns a Resolved location set into a live *mirror.Store. A
// location path is either a plain filesystem directory or one of three
// cloud URL schemes, each dispatched to the matching live backend:
// "s3://bucket/prefix" (AWS, via the policy document's region/access-key
// fields or the default credential chain), "azblob://container/prefix"
// (Azure, via a connectionString field or AZURE_STORAGE_CONNECTION_STRING),
// and "gs://bucket/prefix" (GCS, via Application Default Credentials).
func BuildStore(ctx context.Context, policy Policy, resolved Resolved, failOnPrimaryError bool) (*mirror.Store, error) {
	if resolved.Primary.Path == "" {
		return nil, fmt.Errorf("storageconfig: cannot build a store with no primary location")
	}

	primary, err := toTier(ctx, resolved.Primary, credentialsFor(policy, resolved.Primary))
	if err != nil {
		return nil, err
	}

	mirrors := make([]mirror.Tier, 0, len(resolved.Mirrors))
	for _, loc := range resolved.Mirrors {
		t, err := toTier(ctx, loc, credentialsFor(policy, loc))
		if err != nil {
			return nil, err
		}
		mirrors = append(mirrors, t)
	}

	glaciers := make([]mirror.Tier, 0, len(resolved.Glaciers))
	for _, loc := range resolved.Glaciers {
		t, err := toTier(ctx, loc, credentialsFor(policy, loc))
		if err != nil {
			return nil, err
		}
		glaciers = append(glaciers, t)
	}

	return mirror.New(mirror.Config{
		Primary:            primary,
		Mirrors:            mirrors,
		Glaciers:           glaciers,
		FailOnPrimaryError: failOnPrimaryError,
	}), nil
}
