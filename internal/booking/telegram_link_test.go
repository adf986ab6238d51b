package booking

import (
	"context"
	"testing"
)

func TestTelegramLink_TeacherChatReachesDirectory(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.admin(t)
	teacher, entry := f.teacher(t, admin, "Dr. Rao", "Math", "rao@x.com")

	lc, err := f.svc.StartTelegramLink(ctx, teacher)
	if err != nil {
		t.Fatal(err)
	}
	if len(lc.Code) != 8 || !lc.ExpiresAt.Equal(testNow.Add(LinkTTL)) {
		t.Fatalf("unexpected link code: %+v", lc)
	}

	p, err := f.svc.LinkTelegram(ctx, " "+lc.Code+" ", 4242)
	if err != nil {
		t.Fatal(err)
	}
	if p.TelegramChatID == nil || *p.TelegramChatID != 4242 {
		t.Fatalf("profile chat: %v", p.TelegramChatID)
	}
	got, _ := f.store.GetTeacher(ctx, entry.ID)
	if got.TelegramChatID == nil || *got.TelegramChatID != 4242 {
		t.Fatalf("directory chat: %v", got.TelegramChatID)
	}

	_, err = f.svc.LinkTelegram(ctx, lc.Code, 4242)
	wantUserErr(t, err, KindNotFound, MsgLinkCodeInvalid)
}

func TestTelegramLink_Errors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.StartTelegramLink(ctx, Session{})
	wantUserErr(t, err, KindAuth, MsgNotLoggedIn)

	_, err = f.svc.LinkTelegram(ctx, "", 1)
	wantUserErr(t, err, KindValidation, MsgLinkCodeInvalid)

	_, err = f.svc.LinkTelegram(ctx, "NOPE0000", 1)
	wantUserErr(t, err, KindNotFound, MsgLinkCodeInvalid)
}
