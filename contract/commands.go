package contract

type CreateEventTicket struct {
	Header          Header `json:"header"`
	EventID         string `json:"event_id"`
	NumberOfTickets int    `json:"number_of_tickets"`
}

func NewCreateEventTicket(idempotencyKey, eventID string, numberOfTickets int) CreateEventTicket {
	return CreateEventTicket{
		Header:          NewHeader(idempotencyKey),
		EventID:         eventID,
		NumberOfTickets: numberOfTickets,
	}
}
