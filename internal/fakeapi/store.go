package fakeapi

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/me/audictl/pkg/model"
)

var (
	errNotFound      = errors.New("not found")
	errConflict      = errors.New("conflict")
	errBadOTP        = errors.New("invalid or expired OTP")
	errNotVerified   = errors.New("account not verified")
	errBadCredential = errors.New("invalid email or password")
	errTransition    = errors.New("invalid status change")
)

// OTP purposes.
const (
	otpRegister = "register"
	otpReset    = "reset"
)

type account struct {
	user     model.User
	hash     []byte
	verified bool
}

type otp struct {
	code     string
	purpose  string
	verified bool
}

type bookingRecord struct {
	id           int
	email        string
	auditoriumID int
	start, end   time.Time
	purpose      string
	status       model.BookingStatus
}

// store holds all server state behind one mutex.
type store struct {
	mu          sync.Mutex
	accounts    map[string]*account
	otps        map[string]*otp
	auditoriums map[int]model.Auditorium
	bookings    map[int]*bookingRecord
	nextUser    int
	nextAud     int
	nextBooking int
}

func newStore() *store {
	return &store{
		accounts:    make(map[string]*account),
		otps:        make(map[string]*otp),
		auditoriums: make(map[int]model.Auditorium),
		bookings:    make(map[int]*bookingRecord),
	}
}

func emailKey(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func parseID(s string) (int, error) {
	id, err := strconv.Atoi(s)
	if err != nil || id <= 0 {
		return 0, errNotFound
	}
	return id, nil
}

func newOTPCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", fmt.Errorf("generate otp: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

// accountByEmail returns a copy of the account.
func (st *store) accountByEmail(email string) (*account, bool) {
	st.mu.Lock()
	defer st.mu.Unlock()
	a, ok := st.accounts[emailKey(email)]
	if !ok {
		return nil, false
	}
	cp := *a
	return &cp, true
}

// createAccount adds a user. An unverified account with the same email is
// replaced; a verified one is a conflict.
func (st *store) createAccount(username, email, password string, role model.Role, verified bool) (model.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		return model.User{}, fmt.Errorf("hash password: %w", err)
	}

	st.mu.Lock()
	defer st.mu.Unlock()
	key := emailKey(email)
	if existing, ok := st.accounts[key]; ok && existing.verified {
		return model.User{}, errConflict
	}
	for k, a := range st.accounts {
		if k != key && strings.EqualFold(a.user.Username, username) {
			return model.User{}, errConflict
		}
	}
	st.nextUser++
	a := &account{
		user: model.User{
			ID:       model.ID(strconv.Itoa(st.nextUser)),
			Username: username,
			Email:    key,
			Role:     role,
		},
		hash:     hash,
		verified: verified,
	}
	st.accounts[key] = a
	return a.user, nil
}

// checkPassword authenticates a verified account.
func (st *store) checkPassword(email, password string) (*account, error) {
	st.mu.Lock()
	a, ok := st.accounts[emailKey(email)]
	var cp account
	if ok {
		cp = *a
	}
	st.mu.Unlock()

	if !ok {
		return nil, errBadCredential
	}
	if err := bcrypt.CompareHashAndPassword(cp.hash, []byte(password)); err != nil {
		return nil, errBadCredential
	}
	if !cp.verified {
		return nil, errNotVerified
	}
	return &cp, nil
}

func (st *store) setPassword(email, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	st.mu.Lock()
	defer st.mu.Unlock()
	a, ok := st.accounts[emailKey(email)]
	if !ok {
		return errNotFound
	}
	a.hash = hash
	return nil
}

// issueOTP stores a fresh code for email, replacing any pending one.
func (st *store) issueOTP(email, purpose string) (string, error) {
	code, err := newOTPCode()
	if err != nil {
		return "", err
	}
	st.mu.Lock()
	defer st.mu.Unlock()
	key := emailKey(email)
	a, ok := st.accounts[key]
	if !ok {
		return "", errNotFound
	}
	if purpose == otpRegister && a.verified {
		return "", errConflict
	}
	st.otps[key] = &otp{code: code, purpose: purpose}
	return code, nil
}

// checkOTP validates code. A registration OTP verifies the account and is
// consumed; a reset OTP is marked verified and kept until the reset.
func (st *store) checkOTP(email, code, purpose string) error {
	st.mu.Lock()
	defer st.mu.Unlock()
	key := emailKey(email)
	o, ok := st.otps[key]
	if !ok || o.purpose != purpose || o.code != code {
		return errBadOTP
	}
	switch purpose {
	case otpRegister:
		if a, ok := st.accounts[key]; ok {
			a.verified = true
		}
		delete(st.otps, key)
	case otpReset:
		o.verified = true
	}
	return nil
}

// consumeReset reports whether a reset OTP was verified for email and
// removes it.
func (st *store) consumeReset(email string) bool {
	st.mu.Lock()
	defer st.mu.Unlock()
	key := emailKey(email)
	o, ok := st.otps[key]
	if !ok || o.purpose != otpReset || !o.verified {
		return false
	}
	delete(st.otps, key)
	return true
}

func (st *store) pendingOTP(email string) (string, bool) {
	st.mu.Lock()
	defer st.mu.Unlock()
	o, ok := st.otps[emailKey(email)]
	if !ok {
		return "", false
	}
	return o.code, true
}

func (st *store) listUsers() []model.User {
	st.mu.Lock()
	defer st.mu.Unlock()
	out := make([]model.User, 0, len(st.accounts))
	for _, a := range st.accounts {
		out = append(out, a.user)
	}
	sort.Slice(out, func(i, j int) bool {
		return idLess(out[i].ID, out[j].ID)
	})
	return out
}

func idLess(a, b model.ID) bool {
	x, _ := strconv.Atoi(a.String())
	y, _ := strconv.Atoi(b.String())
	return x < y
}

func (st *store) listAuditoriums(activeOnly bool) []model.Auditorium {
	st.mu.Lock()
	defer st.mu.Unlock()
	out := make([]model.Auditorium, 0, len(st.auditoriums))
	for _, a := range st.auditoriums {
		if activeOnly && !a.Active {
			continue
		}
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool {
		return idLess(out[i].ID, out[j].ID)
	})
	return out
}

func (st *store) getAuditorium(id int) (model.Auditorium, error) {
	st.mu.Lock()
	defer st.mu.Unlock()
	a, ok := st.auditoriums[id]
	if !ok {
		return model.Auditorium{}, errNotFound
	}
	return a, nil
}

func (st *store) addAuditorium(a model.Auditorium) model.Auditorium {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.nextAud++
	a.ID = model.ID(strconv.Itoa(st.nextAud))
	st.auditoriums[st.nextAud] = a
	return a
}

func (st *store) updateAuditorium(id int, a model.Auditorium) (model.Auditorium, error) {
	st.mu.Lock()
	defer st.mu.Unlock()
	if _, ok := st.auditoriums[id]; !ok {
		return model.Auditorium{}, errNotFound
	}
	a.ID = model.ID(strconv.Itoa(id))
	st.auditoriums[id] = a
	return a, nil
}

func (st *store) deleteAuditorium(id int) error {
	st.mu.Lock()
	defer st.mu.Unlock()
	if _, ok := st.auditoriums[id]; !ok {
		return errNotFound
	}
	delete(st.auditoriums, id)
	return nil
}

// createBooking records a PENDING booking. Overlap with a PENDING or
// APPROVED booking of the same auditorium is a conflict.
func (st *store) createBooking(email string, req model.BookingRequest) (model.Booking, error) {
	audID, err := parseID(req.AuditoriumID.String())
	if err != nil {
		return model.Booking{}, err
	}

	st.mu.Lock()
	defer st.mu.Unlock()
	aud, ok := st.auditoriums[audID]
	if !ok || !aud.Active {
		return model.Booking{}, errNotFound
	}
	for _, b := range st.bookings {
		if b.auditoriumID != audID {
			continue
		}
		if b.status != model.BookingStatusPending && b.status != model.BookingStatusApproved {
			continue
		}
		if req.Start.Before(b.end) && b.start.Before(req.End) {
			return model.Booking{}, errConflict
		}
	}
	st.nextBooking++
	rec := &bookingRecord{
		id:           st.nextBooking,
		email:        emailKey(email),
		auditoriumID: audID,
		start:        req.Start,
		end:          req.End,
		purpose:      req.Purpose,
		status:       model.BookingStatusPending,
	}
	st.bookings[rec.id] = rec
	return st.viewLocked(rec), nil
}

// listBookings returns bookings owned by email, or all when email is "".
func (st *store) listBookings(email string) []model.Booking {
	st.mu.Lock()
	defer st.mu.Unlock()
	key := emailKey(email)
	out := make([]model.Booking, 0, len(st.bookings))
	for _, b := range st.bookings {
		if key != "" && b.email != key {
			continue
		}
		out = append(out, st.viewLocked(b))
	}
	sort.Slice(out, func(i, j int) bool {
		return idLess(out[i].ID, out[j].ID)
	})
	return out
}

// transition moves a booking to next. When owner is set only that
// account's bookings are visible.
func (st *store) transition(id int, owner string, next model.BookingStatus) (model.Booking, error) {
	st.mu.Lock()
	defer st.mu.Unlock()
	b, ok := st.bookings[id]
	if !ok || (owner != "" && b.email != emailKey(owner)) {
		return model.Booking{}, errNotFound
	}
	if !b.status.CanTransitionTo(next) {
		return model.Booking{}, fmt.Errorf("%w: booking is %s, cannot become %s", errTransition, b.status, next)
	}
	b.status = next
	return st.viewLocked(b), nil
}

func (st *store) stats() model.DashboardStats {
	st.mu.Lock()
	defer st.mu.Unlock()
	var s model.DashboardStats
	for _, a := range st.auditoriums {
		s.TotalAuditoriums++
		if a.Active {
			s.ActiveAuditoriums++
		} else {
			s.InactiveAuditoriums++
		}
	}
	counts := make(map[int]int)
	for _, b := range st.bookings {
		s.TotalBookings++
		counts[b.auditoriumID]++
		switch b.status {
		case model.BookingStatusPending:
			s.PendingBookings++
		case model.BookingStatusApproved:
			s.ApprovedBookings++
		case model.BookingStatusRejected:
			s.RejectedBookings++
		case model.BookingStatusCancelled:
			s.CancelledBookings++
		}
	}
	best, bestCount := 0, 0
	for id, n := range counts {
		if _, ok := st.auditoriums[id]; !ok {
			continue
		}
		if n > bestCount || (n == bestCount && id < best) {
			best, bestCount = id, n
		}
	}
	if bestCount > 0 {
		s.MostBookedAuditorium = st.auditoriums[best].Name
	}
	return s
}

// viewLocked renders the API view of b. Callers hold st.mu.
func (st *store) viewLocked(b *bookingRecord) model.Booking {
	out := model.Booking{
		ID:        model.ID(strconv.Itoa(b.id)),
		StartTime: b.start,
		EndTime:   b.end,
		Purpose:   b.purpose,
		Status:    b.status,
	}
	if a, ok := st.accounts[b.email]; ok {
		u := a.user
		out.User = &u
	}
	if aud, ok := st.auditoriums[b.auditoriumID]; ok {
		out.Auditorium = &aud
	}
	return out
}
