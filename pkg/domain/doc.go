// Package domain contains the entities shared by the calculator service: users
// and their calculator sessions. They carry no infrastructure concerns so they
// can move freely between the storage, session and API layers.
package domain
