// Package calendar provides a read-only client for the Google Calendar API.
//
// The assistant uses it to answer questions about upcoming appointments;
// event management stays in Google Calendar itself.
//
// Example usage:
//
//	ctx := context.Background()
//	client, err := calendar.NewClient(ctx, cred)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	events, err := client.ListUpcomingEvents(ctx, 7*24*time.Hour, 10)
//	if err != nil {
//	    log.Fatal(err)
//	}
package calendar
