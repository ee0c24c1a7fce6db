package platform

const udemyListing = `<!DOCTYPE html>
<html><body>
<div class="course-list_container__qWt1">
  <div class="course-list_card__jWLES">
    <h3><a href="/course/the-complete-sql-bootcamp/">The Complete SQL Bootcamp</a></h3>
    <div class="course-card-instructors_instructor-list__helor">Jose Portilla, Pierian Training</div>
    <div><span class="ud-heading-sm star-rating_rating-number__2k2dx">4.7</span>
      <span aria-label="412,345 reviews">(412,345)</span></div>
    <div class="course-card-details_course-meta-info__Eqnsp">
      <span>27 total hours</span><span>83 lectures</span><span>All Levels</span>
    </div>
    <div data-purpose="course-price-text"><span class="ud-sr-only">Current price</span><span><span>$19.99</span></span></div>
    <div data-purpose="course-old-price-text"><span class="ud-sr-only">Original price</span><span><s><span>$1,234.00</span></s></span></div>
  </div>
  <div class="course-list_card__jWLES">
    <h3><a href="/course/linux-command-line/">Linux Command Line Basics</a></h3>
    <div class="course-card-instructors_instructor-list__helor">Jason Cannon</div>
    <div><span aria-label="90,110 reviews">(90,110)</span></div>
    <div class="course-card-details_course-meta-info__Eqnsp">
      <span>5.5 total hours</span><span>54 lectures</span><span>Beginner</span>
    </div>
    <div data-purpose="course-price-text"><span class="ud-sr-only">Current price</span><span>$12.99</span></div>
  </div>
  <div class="course-list_card__jWLES">
    <h3><a href="/course/intro-to-git/">Intro to Git</a></h3>
    <div class="course-card-instructors_instructor-list__helor">Ana Souza</div>
    <div><span class="ud-heading-sm star-rating_rating-number__2k2dx">4.3</span>
      <span aria-label="2,001 reviews">(2,001)</span></div>
    <div class="course-card-details_course-meta-info__Eqnsp"><span>45 total mins</span></div>
    <div data-purpose="course-price-text"><span class="ud-sr-only">Current price</span><span>Free</span></div>
  </div>
  <div class="course-list_card__jWLES">
    <h3><a href="/course/no-price/">Priceless</a></h3>
  </div>
</div>
<nav>
  <a data-page="1">1</a><a data-page="2">2</a><span data-page="+1">…</span><a data-page="625">625</a>
</nav>
</body></html>`

const pluralsightListing = `<!DOCTYPE html>
<html><body>
<ul class="browse-search-results">
  <li class="browse-search-results-item">
    <a href="https://www.pluralsight.com/courses/go-fundamentals"><div class="course-details__title">Go Fundamentals</div></a>
    <div class="course-details__author">by Nigel Poulton</div>
    <span id="courseLevel">Beginner</span>
    <span class="duration course-details__level">2h 36m</span>
    <div class="course-details__rating">
      <i class="fa fa-star"></i><i class="fa fa-star"></i><i class="fa fa-star"></i><i class="fa fa-star"></i><i class="fa fa-star-half-o"></i>
      <span>(1,204)</span>
    </div>
  </li>
  <li class="browse-search-results-item">
    <a href="/courses/docker-deep-dive"><div class="course-details__title">Docker Deep Dive</div></a>
    <div class="course-details__author">by Nigel Poulton</div>
    <span class="duration course-details__level">45m</span>
    <div class="course-details__rating"><span>(87)</span></div>
  </li>
</ul>
<ul class="pagination">
  <li class="change--position1">1</li><li class="change--position1">2</li><li class="change--position1">14</li>
</ul>
</body></html>`
