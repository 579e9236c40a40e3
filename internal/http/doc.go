// Package http is the REST client for the BookCafe backend.
//
// Every path is resolved against the configured base URL and exchanges JSON:
//   - POST auth/login {"email","password"} -> {"token","user"}
//   - POST auth/register {"first_name","last_name","email","password"}
//   - GET cubicles -> {"cubicles":[...]}; POST cubicles, PUT cubicles/{id} and
//     DELETE cubicles/{id} exchange the cubicleRequest payload.
//   - GET bookings, GET bookings/today, GET bookings/mine and
//     GET bookings/lookup?email= -> {"bookings":[...]}; POST bookings creates one
//     and PUT bookings/{id} {"status"} moves it through its lifecycle.
//   - GET users -> {"users":[...]}; POST users, PUT users/{id} (only the fields
//     being changed) and DELETE users/{id}.
//   - PUT profile updates the caller; POST profile/avatar uploads the multipart
//     field "avatar" and answers {"avatar_url"}.
//
// Failed calls surface as *application.RemoteError carrying the status and the
// backend's "message". Bodies that are not JSON decode as an empty object.
package http
