package templates

import (
	_ "embed"

	"html/template"
	"strings"
	"time"
)

//go:embed booking_status.html
var bookingStatusHTML string

var bookingStatusTmpl = template.Must(template.New("booking_status").Parse(bookingStatusHTML))

type BookingStatusData struct {
	ClientName        string
	LawyerName        string
	Headline          string
	ConfirmedDateTime string
	MeetingLink       string
	Reason            string
	Year              int
}

func RenderBookingStatus(data BookingStatusData) (string, error) {
	if data.Year == 0 {
		data.Year = time.Now().Year()
	}

	var buf strings.Builder
	err := bookingStatusTmpl.Execute(&buf, data)
	return buf.String(), err
}
