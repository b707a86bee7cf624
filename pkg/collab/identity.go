package collab

import "context"

type Anonymous struct{}

func (Anonymous) Current(context.Context) (*User, error) {
	return nil, nil
}

func StaticIdentity(fid int64, username string) Identity {
	if fid == 0 && username == "" {
		return Anonymous{}
	}
	return &static{u: User{FID: fid, Username: username}}
}

type static struct {
	u User
}

func (s *static) Current(context.Context) (*User, error) {
	u := s.u
	return &u, nil
}
