package event_test

import (
	"context"
	"sync"

	"github.com/Sathursan-S/Ticketer/entity"
)

type MockCommandBus struct {
	lock sync.Mutex
	Sent []any
	Err  error
}

func (m *MockCommandBus) Send(_ context.Context, cmd any) error {
	m.lock.Lock()
	defer m.lock.Unlock()

	if m.Err != nil {
		return m.Err
	}
	m.Sent = append(m.Sent, cmd)
	return nil
}

func (m *MockCommandBus) Commands() []any {
	m.lock.Lock()
	defer m.lock.Unlock()
	return append([]any(nil), m.Sent...)
}

type MockNotificationRepo struct {
	lock    sync.Mutex
	Records []entity.NotificationRecord
	Err     error
}

func (m *MockNotificationRepo) Add(_ context.Context, n entity.NotificationRecord) (bool, error) {
	m.lock.Lock()
	defer m.lock.Unlock()

	if m.Err != nil {
		return false, m.Err
	}
	for _, r := range m.Records {
		if r.CorrelationKey != nil && n.CorrelationKey != nil && *r.CorrelationKey == *n.CorrelationKey {
			return false, nil
		}
	}
	m.Records = append(m.Records, n)
	return true, nil
}

func (m *MockNotificationRepo) Exists(_ context.Context, key string) (bool, error) {
	m.lock.Lock()
	defer m.lock.Unlock()

	if m.Err != nil {
		return false, m.Err
	}
	for _, r := range m.Records {
		if r.CorrelationKey != nil && *r.CorrelationKey == key {
			return true, nil
		}
	}
	return false, nil
}

func (m *MockNotificationRepo) All() []entity.NotificationRecord {
	m.lock.Lock()
	defer m.lock.Unlock()
	return append([]entity.NotificationRecord(nil), m.Records...)
}

type SentMail struct {
	To      string
	Subject string
	Body    string
}

type MockMailer struct {
	lock sync.Mutex
	Sent []SentMail
	Err  error
}

func (m *MockMailer) Send(_ context.Context, to, subject, body string) error {
	m.lock.Lock()
	defer m.lock.Unlock()

	if m.Err != nil {
		return m.Err
	}
	m.Sent = append(m.Sent, SentMail{To: to, Subject: subject, Body: body})
	return nil
}

func (m *MockMailer) Mails() []SentMail {
	m.lock.Lock()
	defer m.lock.Unlock()
	return append([]SentMail(nil), m.Sent...)
}

type MockProcessedStore struct {
	lock    sync.Mutex
	claimed map[string]bool
}

func (m *MockProcessedStore) Claim(_ context.Context, key string) (bool, error) {
	m.lock.Lock()
	defer m.lock.Unlock()

	if m.claimed == nil {
		m.claimed = map[string]bool{}
	}
	if m.claimed[key] {
		return false, nil
	}
	m.claimed[key] = true
	return true, nil
}

func (m *MockProcessedStore) Release(_ context.Context, key string) error {
	m.lock.Lock()
	defer m.lock.Unlock()

	delete(m.claimed, key)
	return nil
}
