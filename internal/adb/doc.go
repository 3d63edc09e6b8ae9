// Package adb is a small client for the adb host protocol.
//
// droidlog never shells out to the adb binary. It talks to the adb server
// (normally 127.0.0.1:5037) directly over TCP. Each request is a four-digit
// hex length followed by the request text; the server answers OKAY or FAIL,
// and FAIL carries a length-prefixed message:
//
//	client: 0012host:transport-any
//	server: OKAY
//	client: 001ashell:logcat -v brief -T 1
//	server: OKAY
//	server: <raw shell output until the device closes it>
//
// A connection serves one shell, so Open dials afresh each time. Client
// implements stream.Connector through Open and stream.Seeder through
// RunningPIDs.
package adb
