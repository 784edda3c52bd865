package store

import (
	"crypto/rand"
	"encoding/csv"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/allisson/nodesecrets/internal/errors"
	"github.com/allisson/nodesecrets/internal/secrets/domain"
)

// DefaultSecretSize is the number of random bytes drawn for a new secret
// when no explicit size is given.
const DefaultSecretSize = 256

// FileStore keeps per-node secret lists loaded from one or more CSV files.
//
// Each row maps one node to its timestamped secrets:
//
//	<node>,<ts1>:<secret1>,<ts2>:<secret2>,...
//
// In-memory state is the sole source of truth between loads. Get and Keys
// are safe for concurrent readers once construction has completed, but
// Load, Add and Save mutate shared state and callers needing concurrent
// rotation must serialize them externally.
type FileStore struct {
	secrets map[string][]domain.TimestampedSecret

	// now is the clock used to timestamp new secrets; replaced in tests to
	// step simulated seconds.
	now func() time.Time
}

// generateSecret draws size random bytes and returns them hex-encoded,
// truncated to size characters. A size <= 0 falls back to
// DefaultSecretSize.
func generateSecret(size int) (string, error) {
	if size <= 0 {
		size = DefaultSecretSize
	}

	buf := make([]byte, size)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate random secret: %w", err)
	}
	return hex.EncodeToString(buf)[:size], nil
}

// NewFileStore creates a FileStore, loading the given files if any. With no
// paths the store starts empty and can be populated via Add.
func NewFileStore(paths ...string) (*FileStore, error) {
	s := &FileStore{
		secrets: make(map[string][]domain.TimestampedSecret),
		now:     time.Now,
	}
	if len(paths) > 0 {
		if err := s.Load(paths...); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Load reads node secret rows from the given files and merges them into the
// store. The load is atomic: rows are parsed and validated into a scratch
// map first, and the live state is only updated when every file parsed
// cleanly. Rows with fewer than two fields are skipped. A node appearing in
// more than one row (within or across files, or already present in the
// store) fails with domain.ErrDuplicateNode; a secret field that does not
// split into exactly two colon-delimited parts fails with
// domain.ErrMalformedSecret.
func (s *FileStore) Load(paths ...string) error {
	parsed := make(map[string][]domain.TimestampedSecret)

	for _, path := range paths {
		if err := s.loadFile(path, parsed); err != nil {
			return err
		}
	}

	for node, secrets := range parsed {
		s.secrets[node] = secrets
	}
	return nil
}

// loadFile parses one file into dst, validating against both dst and the
// live store.
func (s *FileStore) loadFile(path string, dst map[string][]domain.TimestampedSecret) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open secrets file: %w", err)
	}
	defer func() {
		_ = f.Close()
	}()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	line := 0
	for {
		row, err := reader.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return fmt.Errorf("failed to read secrets file %s: %w", path, err)
		}
		line++

		if len(row) < 2 {
			continue
		}

		node := row[0]
		if _, ok := dst[node]; ok {
			return errors.Wrapf(domain.ErrDuplicateNode, "node %q (%s line %d)", node, path, line)
		}
		if _, ok := s.secrets[node]; ok {
			return errors.Wrapf(domain.ErrDuplicateNode, "node %q (%s line %d)", node, path, line)
		}

		secrets := make([]domain.TimestampedSecret, 0, len(row)-1)
		for _, field := range row[1:] {
			ts, err := parseSecretField(field)
			if err != nil {
				return errors.Wrapf(err, "%s line %d", path, line)
			}
			secrets = append(secrets, ts)
		}
		sort.SliceStable(secrets, func(i, j int) bool {
			return secrets[i].Timestamp < secrets[j].Timestamp
		})
		dst[node] = secrets
	}

	return nil
}

// parseSecretField splits a "timestamp:secret" field.
func parseSecretField(field string) (domain.TimestampedSecret, error) {
	parts := strings.Split(field, ":")
	if len(parts) != 2 {
		return domain.TimestampedSecret{}, errors.Wrapf(domain.ErrMalformedSecret, "%d parts", len(parts))
	}
	ts, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return domain.TimestampedSecret{}, errors.Wrapf(domain.ErrMalformedSecret, "bad timestamp %q", parts[0])
	}
	return domain.TimestampedSecret{Timestamp: ts, Secret: parts[1]}, nil
}

// Get returns the secrets for node in chronological order, oldest first.
// Unknown nodes yield an empty slice.
func (s *FileStore) Get(node string) []string {
	secrets := s.secrets[node]
	out := make([]string, 0, len(secrets))
	for _, ts := range secrets {
		out = append(out, ts.Secret)
	}
	return out
}

// Keys returns the known node identifiers in sorted order.
func (s *FileStore) Keys() []string {
	keys := make([]string, 0, len(s.secrets))
	for node := range s.secrets {
		keys = append(keys, node)
	}
	sort.Strings(keys)
	return keys
}

// Add generates a new secret of size random bytes for node, hex-encodes it
// truncated to size characters, timestamps it with the current Unix second
// and appends it to the node's list. A size <= 0 falls back to
// DefaultSecretSize.
//
// The new secret must sort at the end of the list, so adding more than one
// secret per node within the same second fails with domain.ErrRotationRate.
// The list stays sorted without re-sorting on every add. A node with no
// secrets yet always accepts its first Add.
func (s *FileStore) Add(node string, size int) error {
	secret, err := generateSecret(size)
	if err != nil {
		return err
	}

	timestamp := s.now().Unix()
	existing := s.secrets[node]
	if len(existing) > 0 && timestamp <= existing[len(existing)-1].Timestamp {
		return errors.Wrapf(domain.ErrRotationRate, "node %q", node)
	}

	s.secrets[node] = append(existing, domain.TimestampedSecret{
		Timestamp: timestamp,
		Secret:    secret,
	})
	return nil
}

// Save serializes the full node mapping to path in the same CSV format
// consumed by Load. Secrets round-trip bit-for-bit; row order is not
// significant but nodes are written sorted for stable output.
func (s *FileStore) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create secrets file: %w", err)
	}

	writer := csv.NewWriter(f)
	for _, node := range s.Keys() {
		record := make([]string, 0, len(s.secrets[node])+1)
		record = append(record, node)
		for _, ts := range s.secrets[node] {
			record = append(record, fmt.Sprintf("%d:%s", ts.Timestamp, ts.Secret))
		}
		if err := writer.Write(record); err != nil {
			_ = f.Close()
			return fmt.Errorf("failed to write secrets file %s: %w", path, err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to flush secrets file %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close secrets file %s: %w", path, err)
	}
	return nil
}
