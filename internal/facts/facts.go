package facts

import "math/rand"

// Heading выводится над фактом.
const Heading = "Did You Know?"

var all = []string{
	"A day on Venus is longer than its year!",
	"There are more stars in the universe than grains of sand on all of Earth's beaches.",
	"One million Earths could fit inside the Sun.",
	"Neutron stars can spin 600 times per second.",
	"There is a planet made of diamonds twice the size of Earth.",
	"The footprints on the Moon will last for 100 million years.",
	"Saturn's rings are mostly made of ice.",
	"A teaspoonful of neutron star would weigh 6 billion tons.",
}

// All возвращает копию набора фактов.
func All() []string {
	return append([]string(nil), all...)
}

// Random выбирает факт равновероятно. При r == nil используется общий источник.
func Random(r *rand.Rand) string {
	if r == nil {
		return all[rand.Intn(len(all))]
	}
	return all[r.Intn(len(all))]
}
