// Package presser implements the plain HTTP surface of the button presser.
//
// Routes mirror the firmware's original endpoints: GET / shows the settings,
// GET /press enqueues an actuation and GET /set-press-duration?value=N and
// GET /set-duty-cycle?value=N store a setting. Invalid setting values are
// ignored and still answered with 200 OK.
package presser
