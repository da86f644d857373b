package game

import "testing"

func TestBullet_Moves(t *testing.T) {
	b := NewBullet(0, TeamRed, Vec{X: 100, Y: 100}, 90, 8, 10)
	w := newFakeWorld()
	b.Update(w)
	if !approx(b.Box().X, 108) || !approx(b.Box().Y, 100) {
		t.Fatalf("bullet at (%.3f,%.3f), want (108,100)", b.Box().X, b.Box().Y)
	}
	b = NewBullet(0, TeamRed, Vec{X: 100, Y: 100}, 0, 8, 10)
	b.Update(w)
	if !approx(b.Box().X, 100) || !approx(b.Box().Y, 108) {
		t.Fatalf("angle 0 should travel down the screen, got (%.3f,%.3f)", b.Box().X, b.Box().Y)
	}
}

func TestBullet_NoFriendlyFire(t *testing.T) {
	for _, team := range []Team{TeamRed, TeamBlue} {
		friend := NewTank(2, team, DefaultTestStats(), Vec{X: 100, Y: 100})
		b := NewBullet(0, team, Vec{X: 105, Y: 105}, 0, 8, 10)
		w := newFakeWorld(friend)

		b.Update(w)
		if b.Exploding() {
			t.Fatalf("%s bullet exploded on a %s tank", team, team)
		}
		if friend.Health() != friend.Stats().Health {
			t.Fatalf("%s tank took friendly damage: %d", team, friend.Health())
		}
		if w.count(EventTankHit) != 0 {
			t.Fatalf("%s: unexpected hit events %+v", team, w.events)
		}
	}
}

func TestBullet_HitsEnemyOnce(t *testing.T) {
	enemy := NewTank(1, TeamBlue, DefaultTestStats(), Vec{X: 100, Y: 100})
	b := NewBullet(0, TeamRed, Vec{X: 105, Y: 105}, 0, 8, 10)
	w := newFakeWorld(enemy)

	b.Update(w)
	if !b.Exploding() {
		t.Fatal("bullet should explode on an enemy tank")
	}
	if enemy.Health() != 90 {
		t.Fatalf("enemy health = %d, want 90", enemy.Health())
	}
	if w.count(EventBulletExploded) != 1 || w.count(EventTankHit) != 1 {
		t.Fatalf("unexpected events: %+v", w.events)
	}

	pos := b.Box()
	for i := 0; i < 10; i++ {
		b.Update(w)
	}
	if enemy.Health() != 90 {
		t.Fatalf("exploding bullet dealt damage again: health=%d", enemy.Health())
	}
	if b.Box() != pos {
		t.Fatal("exploding bullet moved")
	}
}

func TestBullet_ExplosionRemovesSelf(t *testing.T) {
	enemy := NewTank(1, TeamBlue, DefaultTestStats(), Vec{X: 100, Y: 100})
	b := NewBullet(0, TeamRed, Vec{X: 105, Y: 105}, 0, 8, 10)
	w := newFakeWorld(enemy)
	b.Update(w) // hit

	for i := 1; i <= 16; i++ {
		b.Update(w)
		if len(w.removed) != 0 {
			t.Fatalf("removed after %d explosion ticks, want 17", i)
		}
	}
	b.Update(w)
	if len(w.removed) != 1 || w.removed[0] != Entity(b) {
		t.Fatalf("bullet should remove itself after the animation, removed=%v", w.removed)
	}
}

func TestBullet_WreckAbsorbsWithoutDamage(t *testing.T) {
	wreck := NewTank(1, TeamBlue, DefaultTestStats(), Vec{X: 100, Y: 100})
	w := newFakeWorld(wreck)
	wreck.Damage(w, 1000)
	health := wreck.Health()
	w.events = nil

	b := NewBullet(0, TeamRed, Vec{X: 105, Y: 105}, 0, 8, 10)
	b.Update(w)
	if !b.Exploding() {
		t.Fatal("bullet should still explode on a wreck")
	}
	if wreck.Health() != health || w.count(EventTankHit) != 0 {
		t.Fatal("wreck must not take damage")
	}
}

func TestBullet_Walls(t *testing.T) {
	wall := NewStaticBlock(Rect{X: 100, Y: 100, W: 32, H: 32})

	w := newFakeWorld(wall)
	b := NewBullet(0, TeamRed, Vec{X: 105, Y: 105}, 0, 8, 10)
	b.Update(w)
	if !b.Exploding() {
		t.Fatal("bullet should explode on a wall by default")
	}

	w = newFakeWorld(wall)
	w.cfg.BulletsHitWalls = false
	b = NewBullet(0, TeamRed, Vec{X: 105, Y: 105}, 0, 8, 10)
	b.Update(w)
	if b.Exploding() {
		t.Fatal("bullet should fly over walls when wall hits are off")
	}
}

func TestBullet_LeavesArena(t *testing.T) {
	w := newFakeWorld()
	w.bounds = Rect{W: 200, H: 200}
	b := NewBullet(0, TeamRed, Vec{X: 100, Y: 165}, 0, 20, 10)
	b.Update(w)
	if len(w.removed) != 0 {
		t.Fatal("bullet still overlapping the arena was removed")
	}
	b.Update(w)
	if len(w.removed) != 1 {
		t.Fatal("bullet outside the arena should be removed")
	}
}
