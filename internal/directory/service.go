// Package directory filters the tenant user listing down to enrolled
// students and derives their engineering program from the institutional id
// encoded in the mail local-part.
package directory

import (
	"context"
	"errors"
	"log/slog"
	"regexp"
	"sort"
	"strings"

	"github.com/itsaavisos/gateway/internal/graph"
)

// Record is one normalized directory entry. Field names are part of the
// response contract consumed by the frontend.
type Record struct {
	SequentialID    int    `json:"id"`
	UserID          string `json:"idUser"`
	DisplayName     string `json:"displayName"`
	Mail            string `json:"mail"`
	InstitutionalID string `json:"matricula"`
	Program         string `json:"Carrera"`
}

// ProgramNotFound is the sentinel program label for an unrecognized code.
const ProgramNotFound = "Not found"

// institutionalIDPattern matches a mail local-part of four digits, one
// program code letter, then five digits.
var institutionalIDPattern = regexp.MustCompile(`^[0-9]{4}[SDGTKsdgtk][0-9]{5}$`)

var programByCode = map[byte]string{
	'S': "Systems Engineering",
	'D': "Industrial Engineering",
	'G': "Business Management Engineering",
	'T': "Electromechanical Engineering",
	'K': "Mechatronics Engineering",
}

// ErrTooManyPages indicates the directory listing exceeded the configured
// page cap before exhausting its continuation links.
var ErrTooManyPages = errors.New("directory: listing exceeded page cap")

// Service lists and normalizes the tenant directory.
type Service struct {
	graph    *graph.Client
	maxPages int
	logger   *slog.Logger
}

// NewService creates a directory service. maxPages caps pagination as a
// safety net against runaway listings; values <= 0 select a default.
func NewService(log *slog.Logger, client *graph.Client, maxPages int) *Service {
	if log == nil {
		log = slog.Default()
	}
	if maxPages <= 0 {
		maxPages = 100
	}
	return &Service{
		graph:    client,
		maxPages: maxPages,
		logger:   log.With(slog.String("service", "directory")),
	}
}

// List pages through the full directory, keeps entries whose mail local-part
// is an institutional id, sorts by display name, and assigns 1-based
// sequential ids in sorted order. Any upstream failure aborts the whole
// listing; no partial result is returned.
func (s *Service) List(ctx context.Context, token graph.Token) ([]Record, error) {
	records := make([]Record, 0)
	link := ""
	for page := 0; ; page++ {
		if page >= s.maxPages {
			return nil, ErrTooManyPages
		}
		userPage, err := s.graph.ListUsersPage(ctx, token, link)
		if err != nil {
			return nil, err
		}
		for _, user := range userPage.Value {
			record, ok := normalize(user)
			if !ok {
				continue
			}
			records = append(records, record)
		}
		if userPage.NextLink == "" {
			break
		}
		link = userPage.NextLink
	}

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].DisplayName < records[j].DisplayName
	})
	for i := range records {
		records[i].SequentialID = i + 1
	}
	return records, nil
}

// normalize converts a raw directory user into a Record when its mail
// local-part is a valid institutional id.
func normalize(user graph.User) (Record, bool) {
	if user.Mail == "" {
		return Record{}, false
	}
	localPart, _, _ := strings.Cut(user.Mail, "@")
	if !institutionalIDPattern.MatchString(localPart) {
		return Record{}, false
	}
	return Record{
		UserID:          user.ID,
		DisplayName:     user.DisplayName,
		Mail:            user.Mail,
		InstitutionalID: localPart,
		Program:         programFor(localPart),
	}, true
}

// programFor maps the code letter at index 4 of an institutional id to its
// program label. Unknown codes should be unreachable behind the pattern
// match but still map to the sentinel.
func programFor(institutionalID string) string {
	if len(institutionalID) < 5 {
		return ProgramNotFound
	}
	code := strings.ToUpper(institutionalID)[4]
	program, ok := programByCode[code]
	if !ok {
		return ProgramNotFound
	}
	return program
}
