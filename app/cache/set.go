package cache

type Set map[string]struct{}

func NewSet(links ...string) Set {
	s := make(Set, len(links))
	for _, link := range links {
		s.Add(link)
	}
	return s
}

func (s Set) Contains(link string) bool {
	_, ok := s[link]
	return ok
}

func (s Set) Add(link string) {
	s[link] = struct{}{}
}

func (s Set) Len() int {
	return len(s)
}
