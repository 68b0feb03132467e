// Package backend implements the Operation Layer and Concurrency Gate
// of spec.md §4.4–§4.5: add, modify, delete, rename, bind, search,
// referral-probe, get-entry and the tool interface, composed under a
// per-backend reader/writer lock.
//
// Per spec.md §9's design note ("implement as a table of function
// values... avoid deep class hierarchies"), the capability set is a
// literal struct of func fields built once by New, each closing over
// a shared, unexported *state. This mirrors the teacher's own
// preference for small composed values over type hierarchies
// (internal/server/server.go wires its HTTP handlers the same way).
package backend

import (
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/Eldar88/openldap/internal/config"
	"github.com/Eldar88/openldap/internal/entry"
	"github.com/Eldar88/openldap/internal/enum"
	"github.com/Eldar88/openldap/internal/status"
)

// SchemaValidator is the external schema-enforcement hook spec.md §1
// declares out of scope. It returns a non-nil *status.Error (normally
// status.UnwillingToPerform or a caller-chosen code) to reject e.
type SchemaValidator func(e *entry.Entry) *status.Error

// PasswordVerifier is the external password-verification hook used by
// Bind (spec.md §4.4). candidate is the credential presented by the
// client; stored is the value of the entry's password attribute.
type PasswordVerifier func(stored string, candidate []byte) bool

// state is the shared, unexported backend instance. Every Backend
// function field closes over exactly one of these.
type state struct {
	cfg config.Config

	// mu is the per-backend concurrency gate (spec.md §4.5): shared
	// for reads (bind, search, referral-probe, tool reads), exclusive
	// for mutations (add, modify, delete, rename).
	mu sync.RWMutex

	// serializerMu guards the (conceptually) non-reentrant entry
	// serializer, per spec.md §5. It is acquired only around the
	// short encode/decode call, never across filesystem I/O, and is
	// orthogonal to mu — a point spec.md §9 calls out explicitly.
	serializerMu sync.Mutex

	schemaValidator  SchemaValidator
	passwordVerifier PasswordVerifier

	log *logrus.Entry
}

// Backend is the fixed capability table spec.md §9 asks for: {bind,
// search, add, modify, rename, delete, referral-probe, get-entry,
// tool-*, db-init, db-open, db-destroy}.
type Backend struct {
	Bind          func(dn string, password []byte) status.Code
	Search        func(req SearchRequest, sink enum.StreamSink) status.Code
	Add           func(e *entry.Entry) status.Code
	Modify        func(normDN string, mods []Mod) status.Code
	Rename        func(req RenameRequest) status.Code
	Delete        func(normDN string) status.Code
	ReferralProbe func(normDN string) ([]string, status.Code)
	GetEntry      func(normDN string) (*entry.Entry, status.Code)

	ToolOpen   func() *Cursor
	ToolFirst  func(c *Cursor) status.Code
	ToolNext   func(c *Cursor) (id int, ok bool)
	ToolGet    func(c *Cursor, id int) (*entry.Entry, bool)
	ToolImport func(e *entry.Entry) status.Code

	DBInit    func() error
	DBOpen    func() error
	DBDestroy func() error
}

// Option customizes a Backend built by New.
type Option func(*state)

// WithSchemaValidator injects the external schema-enforcement hook.
// The default accepts every entry (schema enforcement is explicitly
// out of scope per spec.md §1; this is the permissive no-op a caller
// overrides with a real validator).
func WithSchemaValidator(v SchemaValidator) Option {
	return func(s *state) { s.schemaValidator = v }
}

// WithPasswordVerifier injects the external password-verification
// hook. See BcryptVerifier for the default.
func WithPasswordVerifier(v PasswordVerifier) Option {
	return func(s *state) { s.passwordVerifier = v }
}

// WithLogger overrides the logrus entry backend operations log
// through: lifecycle events at info level and rename failures at warn
// level. Mapped I/O errors are returned as result codes and are not
// logged.
func WithLogger(log *logrus.Entry) Option {
	return func(s *state) { s.log = log }
}

// New validates cfg and builds a Backend. Per spec.md §7.3, a missing
// directory option is a fatal startup error.
func New(cfg config.Config, opts ...Option) (*Backend, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	st := &state{
		cfg:             cfg,
		schemaValidator: func(*entry.Entry) *status.Error { return nil },
		log:             logrus.NewEntry(logrus.StandardLogger()),
	}
	st.passwordVerifier = BcryptVerifier
	for _, o := range opts {
		o(st)
	}

	return &Backend{
		Bind:          st.bind,
		Search:        st.search,
		Add:           st.add,
		Modify:        st.modify,
		Rename:        st.rename,
		Delete:        st.delete,
		ReferralProbe: st.referralProbe,
		GetEntry:      st.getEntry,

		ToolOpen:   st.toolOpen,
		ToolFirst:  st.toolFirst,
		ToolNext:   st.toolNext,
		ToolGet:    st.toolGet,
		ToolImport: st.toolImport,

		DBInit:    st.dbInit,
		DBOpen:    st.dbOpen,
		DBDestroy: st.dbDestroy,
	}, nil
}

func (s *state) dbInit() error {
	s.log.WithField("directory", s.cfg.Directory).Info("ldif backend: init")
	return nil
}

func (s *state) dbOpen() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := ensureSuffixDirExists(s.cfg.Directory); err != nil {
		return err
	}
	s.log.WithField("suffix", s.cfg.Suffix).Info("ldif backend: open")
	return nil
}

func (s *state) dbDestroy() error {
	s.log.Info("ldif backend: destroy")
	return nil
}
