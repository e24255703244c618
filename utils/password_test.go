package utils

import "testing"

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("correct horse")
	if err != nil {
		t.Fatal(err)
	}
	if hash == "correct horse" {
		t.Fatal("password stored in clear")
	}
	if !CheckPassword("correct horse", hash) {
		t.Error("CheckPassword rejected the right password")
	}
	if CheckPassword("battery staple", hash) {
		t.Error("CheckPassword accepted a wrong password")
	}
}
